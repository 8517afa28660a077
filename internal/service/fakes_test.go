package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pysugar/drivelink/internal/db"
	"github.com/pysugar/drivelink/internal/db/models"
	"github.com/pysugar/drivelink/internal/drive"
	"github.com/pysugar/drivelink/internal/lease"
	"github.com/pysugar/drivelink/internal/notify"
	"github.com/pysugar/drivelink/internal/service"
	"github.com/pysugar/drivelink/internal/testutil"
	"github.com/stretchr/testify/require"
	drivev3 "google.golang.org/api/drive/v3"
)

// fakeDrive serves pages keyed by page token and records every call.
type fakeDrive struct {
	mu        sync.Mutex
	pages     map[string]*drive.Page
	errs      map[string]error
	head      string
	headErr   error
	folderID  string
	files     map[string]*drivev3.File
	listCalls []drive.ListRequest
	headCalls int
	tokens    []string
}

func newFakeDrive() *fakeDrive {
	return &fakeDrive{
		pages: map[string]*drive.Page{},
		errs:  map[string]error{},
		files: map[string]*drivev3.File{},
	}
}

func (f *fakeDrive) List(_ context.Context, token string, req drive.ListRequest) (*drive.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = append(f.listCalls, req)
	f.tokens = append(f.tokens, token)
	if err := f.errs[req.PageToken]; err != nil {
		return nil, err
	}
	if page, ok := f.pages[req.PageToken]; ok {
		return page, nil
	}
	return &drive.Page{}, nil
}

func (f *fakeDrive) LatestModifiedTime(context.Context, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.headCalls++
	return f.head, f.headErr
}

func (f *fakeDrive) Get(_ context.Context, _ string, fileID, _ string) (*drivev3.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if file, ok := f.files[fileID]; ok {
		return file, nil
	}
	return nil, &drive.UpstreamError{Status: 404, Message: "File not found: " + fileID}
}

func (f *fakeDrive) FindFolder(context.Context, string, ...string) (string, error) {
	return f.folderID, nil
}

func (f *fakeDrive) ListCalls() []drive.ListRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]drive.ListRequest(nil), f.listCalls...)
}

// storedTokens hands out the stored access token unchanged.
type storedTokens struct{}

func (storedTokens) AccessToken(_ context.Context, cred *models.Credential) string {
	return cred.AccessToken
}

type fixture struct {
	store    *db.Store
	drive    *fakeDrive
	notifier *notify.Recorder
	clock    *testutil.StubClock
	svc      *service.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    testutil.NewStore(t),
		drive:    newFakeDrive(),
		notifier: &notify.Recorder{},
		clock:    testutil.FixedClock(),
	}
	f.useLeases(nil)
	return f
}

// useLeases rebuilds the service with the given lease backend.
func (f *fixture) useLeases(leases lease.Locker) {
	f.svc = service.New(f.store, f.drive, storedTokens{}, f.notifier, leases, service.Options{
		SyncInterval: 3 * time.Hour,
		PageSize:     1000,
		StatsTTL:     10 * time.Minute,
		MaxMembers:   3,
	}).WithClock(f.clock.Now)
}

// seedOwner signs in userID and links it to tgID.
func (f *fixture) seedOwner(t *testing.T, userID, tgID string) *models.Credential {
	t.Helper()
	ctx := context.Background()
	_, err := f.store.UpsertSignIn(ctx, db.SignIn{
		Provider:          "google",
		ProviderAccountID: "acct-" + userID,
		Email:             userID,
		AccessToken:       "access-" + userID,
		AccessTokenExpiry: f.clock.Now().Add(time.Hour),
		RefreshToken:      "refresh-" + userID,
	})
	require.NoError(t, err)
	if tgID != "" {
		_, err = f.store.LinkTelegram(ctx, userID, tgID, f.clock.Now())
		require.NoError(t, err)
	}
	return f.reload(t, userID)
}

func (f *fixture) reload(t *testing.T, userID string) *models.Credential {
	t.Helper()
	cred, err := f.store.FindCredentialByUserID(context.Background(), userID)
	require.NoError(t, err)
	return cred
}

func file(id, name, mime string) *drivev3.File {
	return &drivev3.File{Id: id, Name: name, MimeType: mime, ModifiedTime: "2025-03-01T10:00:00.000Z"}
}
