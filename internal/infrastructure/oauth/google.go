package oauth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jobzen/identity-service/internal/core/ports"
)

const (
	googleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// Google implements Provider for Google accounts.
type Google struct {
	cfg Config

	authURL     string
	tokenURL    string
	userinfoURL string
}

func NewGoogle(cfg Config) *Google {
	return &Google{
		cfg:         cfg,
		authURL:     googleAuthURL,
		tokenURL:    googleTokenURL,
		userinfoURL: googleUserinfoURL,
	}
}

func (g *Google) Name() string { return "google" }

func (g *Google) AuthCodeURL(state string) string {
	q := url.Values{}
	q.Set("client_id", g.cfg.ClientID)
	q.Set("redirect_uri", g.cfg.CallbackURL)
	q.Set("response_type", "code")
	q.Set("scope", "openid email profile")
	q.Set("state", state)
	return g.authURL + "?" + q.Encode()
}

func (g *Google) Exchange(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("client_id", g.cfg.ClientID)
	form.Set("client_secret", g.cfg.ClientSecret)
	form.Set("code", code)
	form.Set("redirect_uri", g.cfg.CallbackURL)
	form.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := doJSON(req, &token); err != nil {
		return "", fmt.Errorf("google token exchange: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("google token exchange: empty access token")
	}
	return token.AccessToken, nil
}

type googleUser struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
}

func (g *Google) FetchIdentity(ctx context.Context, accessToken string) (*ports.ExternalIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userinfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var user googleUser
	if err := doJSON(req, &user); err != nil {
		return nil, fmt.Errorf("google profile: %w", err)
	}
	if user.Email == "" {
		return nil, fmt.Errorf("google profile: no email available")
	}

	return &ports.ExternalIdentity{
		Email:      user.Email,
		Provider:   g.Name(),
		ProviderID: user.ID,
		FirstName:  user.GivenName,
		LastName:   user.FamilyName,
		AvatarURL:  user.Picture,
	}, nil
}
