package google

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/pysugar/drivelink/internal/auth/session"
	"github.com/pysugar/drivelink/internal/config"
	"github.com/pysugar/drivelink/internal/db"
	"github.com/pysugar/drivelink/internal/util"
	"golang.org/x/oauth2"
)

// ProviderName is stored as the credential's provider.
const ProviderName = "google"

var userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type userInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// HandleCallback processes the OAuth callback from Google: it exchanges the code,
// upserts the owner's credential and starts a session.
func HandleCallback(cfg *config.Config, store *db.Store, sessions *session.Manager) http.HandlerFunc {
	httpClient := &http.Client{Timeout: 30 * time.Second}

	return func(w http.ResponseWriter, r *http.Request) {
		if !validState(r) {
			http.Error(w, "Invalid state token", http.StatusBadRequest)
			return
		}
		setStateCookie(w, r, "", -1)
		if errParam := r.URL.Query().Get("error"); errParam != "" {
			http.Error(w, fmt.Sprintf("Google sign-in failed: %s", errParam), http.StatusBadRequest)
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "Missing authorization code", http.StatusBadRequest)
			return
		}

		oauthConfig := GetOAuthConfig(cfg.Google, CallbackURL(cfg.Server.PublicURL, r))
		ctx := context.WithValue(r.Context(), oauth2.HTTPClient, httpClient)

		token, err := oauthConfig.Exchange(ctx, code)
		if err != nil {
			log.Printf("❌ Token exchange failed: %v", err)
			http.Error(w, "Token exchange failed", http.StatusBadGateway)
			return
		}

		info, err := fetchUserInfo(oauthConfig.Client(ctx, token))
		if err != nil {
			log.Printf("❌ Failed to get user info: %v", err)
			http.Error(w, "Failed to get user info", http.StatusBadGateway)
			return
		}
		if info.Email == "" {
			http.Error(w, "Google account has no email address", http.StatusBadRequest)
			return
		}

		scope := ScopeString
		if granted, ok := token.Extra("scope").(string); ok && granted != "" {
			scope = granted
		}

		cred, err := store.UpsertSignIn(r.Context(), db.SignIn{
			Provider:          ProviderName,
			ProviderAccountID: info.ID,
			Email:             info.Email,
			Name:              info.Name,
			Image:             info.Picture,
			Scope:             scope,
			AccessToken:       token.AccessToken,
			AccessTokenExpiry: token.Expiry,
			RefreshToken:      token.RefreshToken,
		})
		if err != nil {
			log.Printf("❌ Failed to save credential for %s: %v", info.Email, err)
			http.Error(w, "Failed to save account", http.StatusInternalServerError)
			return
		}

		if err := sessions.Issue(w, r, session.Identity{UserID: cred.UserID, Name: cred.Name}); err != nil {
			log.Printf("❌ Failed to issue session for %s: %v", cred.UserID, err)
			http.Error(w, "Failed to start session", http.StatusInternalServerError)
			return
		}
		log.Printf("✅ Signed in: %s", cred.UserID)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<title>Signed in</title>
	<style>
		body { font-family: -apple-system, BlinkMacSystemFont, sans-serif; max-width: 600px; margin: 50px auto; padding: 20px; background: #1a1a2e; color: #eee; }
		.success { color: #4ade80; }
		code { background: #374151; padding: 2px 6px; border-radius: 4px; color: #fbbf24; }
	</style>
</head>
<body>
	<h1 class="success">✅ Signed in</h1>
	<p><strong>Account:</strong> %s</p>
	<p>Link your Telegram account from the bot to browse your Drive there.</p>
</body>
</html>`, html.EscapeString(cred.UserID))
	}
}

func fetchUserInfo(client *http.Client) (*userInfo, error) {
	resp, err := client.Get(userInfoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned %d: %s", resp.StatusCode, util.TruncateLog(string(body), 200))
	}

	var info userInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	return &info, nil
}
