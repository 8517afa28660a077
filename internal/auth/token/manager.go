package token

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pysugar/drivelink/internal/auth/google"
	"github.com/pysugar/drivelink/internal/config"
	"github.com/pysugar/drivelink/internal/db"
	"github.com/pysugar/drivelink/internal/db/models"
	"golang.org/x/oauth2"
)

// ErrNoRefreshToken is returned when a credential cannot be refreshed at all.
var ErrNoRefreshToken = errors.New("no refresh token stored")

// Tokens is the result of a successful refresh.
type Tokens struct {
	AccessToken        string
	AccessTokenExpires int64 // epoch millis
	RefreshToken       string
}

// Refresher exchanges stored refresh tokens for new access tokens and persists them.
type Refresher struct {
	store      *db.Store
	oauth      *oauth2.Config
	httpClient *http.Client
	now        func() time.Time
}

// NewRefresher creates a refresher for the configured Google client.
func NewRefresher(store *db.Store, cfg config.GoogleConfig) *Refresher {
	return &Refresher{
		store:      store,
		oauth:      google.GetOAuthConfig(cfg, ""),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (r *Refresher) WithClock(now func() time.Time) *Refresher {
	r.now = now
	return r
}

// Refresh exchanges cred's refresh token for a new access token. On success the
// new tokens are written to the store and then to cred. A refresh whose tokens
// cannot be saved is a failure and leaves cred untouched.
func (r *Refresher) Refresh(ctx context.Context, cred *models.Credential) (*Tokens, error) {
	if cred.RefreshToken == "" {
		return nil, ErrNoRefreshToken
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, r.httpClient)
	tokenSource := r.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: cred.RefreshToken})

	newToken, err := tokenSource.Token()
	if err != nil {
		if isPermanentRefreshError(err) {
			log.Printf("🔒 Refresh token for %s was rejected, re-login required: %v", cred.UserID, err)
		} else {
			log.Printf("❌ Refresh token failed for %s: %v", cred.UserID, err)
		}
		return nil, fmt.Errorf("refresh access token: %w", err)
	}

	now := r.now()
	expiry := newToken.Expiry
	if expiry.IsZero() {
		expiry = now
	}
	updated := &Tokens{
		AccessToken:        newToken.AccessToken,
		AccessTokenExpires: expiry.UnixMilli(),
		RefreshToken:       cred.RefreshToken,
	}
	// Persist rotated refresh token if provided (RFC 6749 compliance)
	if newToken.RefreshToken != "" && newToken.RefreshToken != cred.RefreshToken {
		log.Printf("🔄 Rotating refresh token for: %s", cred.UserID)
		updated.RefreshToken = newToken.RefreshToken
	}

	if err := r.store.UpdateTokens(ctx, cred.ID, updated.AccessToken, updated.AccessTokenExpires, updated.RefreshToken, now); err != nil {
		log.Printf("❌ Failed to save refreshed token for %s: %v", cred.UserID, err)
		return nil, fmt.Errorf("persist refreshed token: %w", err)
	}

	cred.AccessToken = updated.AccessToken
	cred.AccessTokenExpires = updated.AccessTokenExpires
	cred.RefreshToken = updated.RefreshToken

	log.Printf("✅ Refreshed token for: %s (expires: %s)", cred.UserID, expiry.Format(time.RFC3339))
	return updated, nil
}

// AccessToken returns the access token to use for cred, refreshing it first when
// it is missing or expired. A failed refresh falls back to the stored token.
func (r *Refresher) AccessToken(ctx context.Context, cred *models.Credential) string {
	if !cred.TokenExpired(r.now()) {
		return cred.AccessToken
	}
	updated, err := r.Refresh(ctx, cred)
	if err != nil || updated.AccessToken == "" {
		return cred.AccessToken
	}
	return updated.AccessToken
}

func isPermanentRefreshError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	permanentMarkers := []string{
		"invalid_grant",
		"invalid_client",
		"unauthorized_client",
		"token has been expired or revoked",
		"revoked",
	}
	for _, marker := range permanentMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
