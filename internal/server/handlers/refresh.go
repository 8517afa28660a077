package handlers

import (
	"errors"
	"net/http"

	"github.com/pysugar/drivelink/internal/auth/token"
	"github.com/pysugar/drivelink/internal/db"
	"github.com/pysugar/drivelink/internal/logging"
)

// RefreshHandler forces a token refresh for the signed-in owner.
func RefreshHandler(store *db.Store, refresher *token.Refresher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := sessionUser(r)
		cred, err := store.FindCredentialByUserID(r.Context(), userID)
		if errors.Is(err, db.ErrNotFound) {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"ok": false, "error": "Not linked"})
			return
		}
		if err != nil {
			writeError(w, r, err)
			return
		}

		tokens, err := refresher.Refresh(r.Context(), cred)
		if errors.Is(err, token.ErrNoRefreshToken) {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"ok": false, "error": "No refresh token"})
			return
		}
		if err != nil {
			logging.Printf(r.Context(), "❌ Manual token refresh for %s failed: %v", userID, err)
			writeJSON(w, http.StatusBadGateway, map[string]interface{}{"ok": false, "error": "Token refresh failed"})
			return
		}
		writeOK(w, map[string]interface{}{"accessTokenExpires": tokens.AccessTokenExpires})
	}
}
