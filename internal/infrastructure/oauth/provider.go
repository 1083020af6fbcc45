// Package oauth adapts third-party OAuth2 identity providers into the
// canonical ExternalIdentity shape consumed by the auth engine.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jobzen/identity-service/internal/core/ports"
)

// Config holds the client credentials for one provider.
type Config struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

// Provider is one external identity provider. The set of providers is
// closed and assembled at startup.
type Provider interface {
	// Name returns the provider identifier (e.g. "github", "google").
	Name() string
	// AuthCodeURL returns the URL users are redirected to for consent.
	AuthCodeURL(state string) string
	// Exchange trades an authorization code for an access token.
	Exchange(ctx context.Context, code string) (string, error)
	// FetchIdentity fetches the user's profile and normalises it.
	FetchIdentity(ctx context.Context, accessToken string) (*ports.ExternalIdentity, error)
}

var httpClient = &http.Client{Timeout: 10 * time.Second}

func doJSON(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, body)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
