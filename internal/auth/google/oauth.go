package google

import (
	"github.com/pysugar/drivelink/internal/config"
	"golang.org/x/oauth2"
	googleOAuth "golang.org/x/oauth2/google"
)

// Scopes requested at sign-in. drive.readonly is all the bot needs.
var Scopes = []string{
	"openid",
	"email",
	"profile",
	"https://www.googleapis.com/auth/drive.readonly",
}

// ScopeString is the space separated scope list stored on the credential.
const ScopeString = "openid email profile https://www.googleapis.com/auth/drive.readonly"

// GetOAuthConfig returns the OAuth2 config for Google authentication.
func GetOAuthConfig(cfg config.GoogleConfig, redirectURL string) *oauth2.Config {
	endpoint := googleOAuth.Endpoint
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}
	endpoint.AuthStyle = oauth2.AuthStyleInParams

	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  redirectURL,
		Scopes:       Scopes,
		Endpoint:     endpoint,
	}
}
