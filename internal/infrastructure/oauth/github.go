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
	githubAuthURL  = "https://github.com/login/oauth/authorize"
	githubTokenURL = "https://github.com/login/oauth/access_token"
	githubAPIURL   = "https://api.github.com"
)

// GitHub implements Provider for github.com.
type GitHub struct {
	cfg Config

	// Overridable for tests.
	authURL  string
	tokenURL string
	apiURL   string
}

func NewGitHub(cfg Config) *GitHub {
	return &GitHub{
		cfg:      cfg,
		authURL:  githubAuthURL,
		tokenURL: githubTokenURL,
		apiURL:   githubAPIURL,
	}
}

func (g *GitHub) Name() string { return "github" }

func (g *GitHub) AuthCodeURL(state string) string {
	q := url.Values{}
	q.Set("client_id", g.cfg.ClientID)
	q.Set("redirect_uri", g.cfg.CallbackURL)
	q.Set("scope", "user:email")
	q.Set("state", state)
	return g.authURL + "?" + q.Encode()
}

func (g *GitHub) Exchange(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("client_id", g.cfg.ClientID)
	form.Set("client_secret", g.cfg.ClientSecret)
	form.Set("code", code)
	form.Set("redirect_uri", g.cfg.CallbackURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := doJSON(req, &token); err != nil {
		return "", fmt.Errorf("github token exchange: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("github token exchange: empty access token")
	}
	return token.AccessToken, nil
}

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func (g *GitHub) FetchIdentity(ctx context.Context, accessToken string) (*ports.ExternalIdentity, error) {
	var user githubUser
	if err := g.get(ctx, accessToken, "/user", &user); err != nil {
		return nil, fmt.Errorf("github profile: %w", err)
	}

	email := user.Email
	if email == "" {
		// Private emails require the dedicated endpoint under the
		// user:email scope.
		var emails []githubEmail
		if err := g.get(ctx, accessToken, "/user/emails", &emails); err != nil {
			return nil, fmt.Errorf("github emails: %w", err)
		}
		for _, e := range emails {
			if e.Primary {
				email = e.Email
				break
			}
		}
		if email == "" && len(emails) > 0 {
			email = emails[0].Email
		}
	}
	if email == "" {
		return nil, fmt.Errorf("github profile: no email available")
	}

	first, last := splitDisplayName(user.Name, user.Login)
	return &ports.ExternalIdentity{
		Email:      email,
		Provider:   g.Name(),
		ProviderID: fmt.Sprintf("%d", user.ID),
		FirstName:  first,
		LastName:   last,
		AvatarURL:  user.AvatarURL,
	}, nil
}

func (g *GitHub) get(ctx context.Context, accessToken, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.apiURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	return doJSON(req, out)
}

// splitDisplayName derives first/last names from a free-form display name,
// falling back to the login when no display name is set.
func splitDisplayName(displayName, fallback string) (first, last string) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return fallback, ""
	}
	parts := strings.Fields(displayName)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
