package drive

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/pysugar/drivelink/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.DriveConfig{}, srv.URL+"/")
}

func TestList_SendsParametersAndParsesPage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files", r.URL.Path)
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))

		q := r.URL.Query()
		assert.Equal(t, SyncQuery(), q.Get("q"))
		assert.Equal(t, SyncFields, q.Get("fields"))
		assert.Equal(t, "1000", q.Get("pageSize"))
		assert.Equal(t, "tok-1", q.Get("pageToken"))
		assert.Equal(t, "true", q.Get("includeItemsFromAllDrives"))
		assert.Equal(t, "true", q.Get("supportsAllDrives"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"nextPageToken":"tok-2","files":[{"id":"f1","name":"a.pdf","mimeType":"application/pdf","parents":["p1"]}]}`)
	})

	page, err := client.List(context.Background(), "access-1", ListRequest{
		Query:     SyncQuery(),
		Fields:    SyncFields,
		PageSize:  1000,
		PageToken: "tok-1",
		AllDrives: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "tok-2", page.NextPageToken)
	require.Len(t, page.Files, 1)
	assert.Equal(t, "f1", page.Files[0].Id)
	assert.Equal(t, []string{"p1"}, page.Files[0].Parents)
}

func TestList_MapsUpstreamErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"code":401,"message":"Invalid Credentials","errors":[{"reason":"authError"}]}}`)
	})

	_, err := client.List(context.Background(), "stale", ListRequest{Query: DefaultRemoteQuery})
	require.Error(t, err)

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream), "expected UpstreamError, got %T", err)
	assert.Equal(t, http.StatusUnauthorized, upstream.Status)
	assert.Equal(t, "Invalid Credentials", upstream.Message)
}

func TestLatestModifiedTime(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "1", q.Get("pageSize"))
		assert.Equal(t, "modifiedTime desc", q.Get("orderBy"))
		assert.Equal(t, HeadFields, q.Get("fields"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"files":[{"modifiedTime":"2025-03-01T10:00:00.000Z"}]}`)
	})

	head, err := client.LatestModifiedTime(context.Background(), "access-1")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01T10:00:00.000Z", head)
}

func TestFindFolder(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		q := r.URL.Query().Get("q")
		assert.Contains(t, q, "name = 'Movies' or name = 'movies'")
		w.Header().Set("Content-Type", "application/json")
		if atomic.LoadInt32(&calls) == 1 {
			fmt.Fprint(w, `{"files":[{"id":"other","name":"Movies 2","mimeType":"application/vnd.google-apps.folder"},{"id":"folder-1","name":"movies","mimeType":"application/vnd.google-apps.folder"}]}`)
			return
		}
		fmt.Fprint(w, `{"files":[]}`)
	})

	id, err := client.FindFolder(context.Background(), "access-1", MoviesFolderNames...)
	require.NoError(t, err)
	assert.Equal(t, "folder-1", id)

	id, err = client.FindFolder(context.Background(), "access-1", MoviesFolderNames...)
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestGet(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files/movie-1", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("supportsAllDrives"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"movie-1","name":"Film","mimeType":"application/vnd.google-apps.shortcut","shortcutDetails":{"targetId":"target-1","targetMimeType":"video/mp4"}}`)
	})

	file, err := client.Get(context.Background(), "access-1", "movie-1", FileFields)
	require.NoError(t, err)
	require.NotNil(t, file.ShortcutDetails)
	assert.Equal(t, "target-1", file.ShortcutDetails.TargetId)
}

func TestQueries(t *testing.T) {
	sync := SyncQuery()
	assert.True(t, strings.HasPrefix(sync, "trashed = false and (mimeType contains 'image/'"))
	for _, mime := range IndexableDocumentTypes {
		assert.Contains(t, sync, "mimeType = '"+mime+"'")
	}

	assert.Equal(t,
		"('abc' in parents) and trashed=false and (mimeType contains 'video/' or mimeType = 'application/vnd.google-apps.shortcut')",
		MoviesQuery("abc"))
	assert.Equal(t,
		"mimeType = 'application/vnd.google-apps.folder' and trashed = false and (name = 'Bob\\'s')",
		FolderQuery("Bob's"))
	assert.Equal(t, "https://drive.google.com/file/d/x1/preview", PreviewURL("x1"))
}
