package platforms

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/reputrace/social-link/models"
)

// ProfileAdapter maps one platform's profile API response into the
// normalized SocialProfile shape.
type ProfileAdapter interface {
	// FetchProfile calls the platform profile endpoint with the bearer token.
	FetchProfile(ctx context.Context, client *http.Client, pc *PlatformConfig, accessToken string) (*models.SocialProfile, error)
	// PlatformID returns the platform identifier.
	PlatformID() string
}

// Fetcher dispatches profile retrieval to per-platform adapters. Adapter
// failures are surfaced as-is; the fetcher never reinterprets them.
type Fetcher struct {
	Registry *Registry
	Client   *http.Client
	adapters map[string]ProfileAdapter
}

// NewFetcher creates a fetcher with all supported platform adapters
// registered and a timeout-bounded HTTP client.
func NewFetcher(registry *Registry, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	f := &Fetcher{
		Registry: registry,
		Client:   &http.Client{Timeout: timeout},
		adapters: make(map[string]ProfileAdapter),
	}
	f.Register(&XProfileAdapter{})
	f.Register(&FacebookProfileAdapter{})
	f.Register(&InstagramProfileAdapter{})
	f.Register(&LinkedInProfileAdapter{})
	f.Register(&TikTokProfileAdapter{})
	f.Register(&ThreadsProfileAdapter{})
	return f
}

// Register adds an adapter to the fetcher.
func (f *Fetcher) Register(adapter ProfileAdapter) {
	f.adapters[adapter.PlatformID()] = adapter
}

// FetchProfile returns the normalized profile for a platform and token.
func (f *Fetcher) FetchProfile(ctx context.Context, platformID, accessToken string) (*models.SocialProfile, error) {
	pc, err := f.Registry.Get(platformID)
	if err != nil {
		return nil, err
	}
	adapter, ok := f.adapters[platformID]
	if !ok {
		return nil, &UnsupportedPlatformError{Platform: platformID}
	}
	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	return adapter.FetchProfile(ctx, client, pc, accessToken)
}

// getBearerJSON performs an authorized GET and returns the raw body, mapping
// any non-success status to a ProfileFetchError for the platform.
func getBearerJSON(ctx context.Context, client *http.Client, pc *PlatformConfig, rawURL, accessToken string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("profile request to %s failed: %w", pc.ID, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ProfileFetchError{
			Platform:   pc.ID,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}
	return body, nil
}
