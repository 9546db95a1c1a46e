package platforms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/reputrace/social-link/models"
)

// DefaultHTTPTimeout bounds every outbound call to a platform endpoint.
const DefaultHTTPTimeout = 15 * time.Second

// Exchanger performs the server-to-server legs of the OAuth flow against a
// platform's token endpoint: the authorization-code exchange and the refresh
// grant.
type Exchanger struct {
	Registry *Registry
	Client   *http.Client
}

// NewExchanger creates an exchanger with a timeout-bounded HTTP client.
func NewExchanger(registry *Registry, timeout time.Duration) *Exchanger {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &Exchanger{
		Registry: registry,
		Client:   &http.Client{Timeout: timeout},
	}
}

func (e *Exchanger) httpClient() *http.Client {
	if e.Client != nil {
		return e.Client
	}
	return &http.Client{Timeout: DefaultHTTPTimeout}
}

// ExchangeCode swaps an authorization code for tokens. Codes are single-use:
// a failed exchange must not be retried with the same code, so any failure is
// surfaced immediately as a TokenExchangeError.
func (e *Exchanger) ExchangeCode(ctx context.Context, platformID, code string) (*models.OAuthTokens, error) {
	pc, err := e.Registry.Get(platformID)
	if err != nil {
		return nil, err
	}

	data := url.Values{}
	data.Set("client_id", pc.ClientID)
	data.Set("client_secret", pc.ClientSecret)
	data.Set("code", code)
	data.Set("grant_type", "authorization_code")
	data.Set("redirect_uri", pc.RedirectURI)

	return e.postTokenEndpoint(ctx, pc, data)
}

// RefreshToken exchanges a stored refresh token for a new access token.
func (e *Exchanger) RefreshToken(ctx context.Context, platformID, refreshToken string) (*models.OAuthTokens, error) {
	pc, err := e.Registry.Get(platformID)
	if err != nil {
		return nil, err
	}

	data := url.Values{}
	data.Set("client_id", pc.ClientID)
	data.Set("client_secret", pc.ClientSecret)
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)

	return e.postTokenEndpoint(ctx, pc, data)
}

func (e *Exchanger) postTokenEndpoint(ctx context.Context, pc *PlatformConfig, data url.Values) (*models.OAuthTokens, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", pc.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := e.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request to %s failed: %w", pc.ID, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TokenExchangeError{
			Platform:   pc.ID,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	var tokens models.OAuthTokens
	if err := json.Unmarshal(body, &tokens); err != nil {
		return nil, fmt.Errorf("failed to parse token response from %s: %w", pc.ID, err)
	}
	if tokens.AccessToken == "" {
		return nil, &TokenExchangeError{
			Platform:   pc.ID,
			StatusCode: resp.StatusCode,
			Body:       "response contained no access_token",
		}
	}
	if tokens.TokenType == "" {
		tokens.TokenType = "Bearer"
	}
	return &tokens, nil
}
