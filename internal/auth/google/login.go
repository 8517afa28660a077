package google

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/pysugar/drivelink/internal/config"
	"golang.org/x/oauth2"
)

// StateCookieName carries the OAuth state between login and callback.
const StateCookieName = "drivelink_oauth_state"

const stateTTL = 10 * time.Minute

func newStateToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func setStateCookie(w http.ResponseWriter, r *http.Request, state string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     StateCookieName,
		Value:    state,
		Path:     "/auth/google",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https",
		SameSite: http.SameSiteLaxMode,
	})
}

// validState reports whether the state query parameter matches the browser's state cookie.
func validState(r *http.Request) bool {
	cookie, err := r.Cookie(StateCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}
	state := r.URL.Query().Get("state")
	return subtle.ConstantTimeCompare([]byte(state), []byte(cookie.Value)) == 1
}

// isPrivateIP checks if the host is a private/local IP address
func isPrivateIP(host string) bool {
	hostOnly := host
	if h, _, err := net.SplitHostPort(host); err == nil {
		hostOnly = h
	}

	if hostOnly == "localhost" || hostOnly == "127.0.0.1" {
		return false // localhost doesn't require device_id
	}

	ip := net.ParseIP(hostOnly)
	if ip == nil {
		return false
	}
	return ip.IsPrivate()
}

// CallbackURL returns the OAuth redirect URL. The configured public URL wins;
// otherwise it is derived from the request.
func CallbackURL(publicURL string, r *http.Request) string {
	if publicURL != "" {
		return strings.TrimRight(publicURL, "/") + "/auth/google/callback"
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/auth/google/callback", scheme, r.Host)
}

// HandleLogin initiates the Google OAuth flow by redirecting to Google's consent page.
func HandleLogin(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		oauthConfig := GetOAuthConfig(cfg.Google, CallbackURL(cfg.Server.PublicURL, r))

		state, err := newStateToken()
		if err != nil {
			log.Printf("❌ Failed to generate OAuth state: %v", err)
			http.Error(w, "Failed to start sign-in", http.StatusInternalServerError)
			return
		}
		setStateCookie(w, r, state, int(stateTTL.Seconds()))

		// offline + consent so Google always hands back a refresh token
		opts := []oauth2.AuthCodeOption{
			oauth2.AccessTypeOffline,
			oauth2.ApprovalForce,
		}

		// Google requires device_id and device_name for private IP addresses
		if isPrivateIP(r.Host) {
			deviceID := make([]byte, 16)
			rand.Read(deviceID)
			opts = append(opts,
				oauth2.SetAuthURLParam("device_id", hex.EncodeToString(deviceID)),
				oauth2.SetAuthURLParam("device_name", "drivelink"),
			)
		}

		http.Redirect(w, r, oauthConfig.AuthCodeURL(state, opts...), http.StatusTemporaryRedirect)
	}
}
