package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	valkey "github.com/valkey-io/valkey-go"
)

// ErrTokenNotFound indicates the access token was not found in cache.
var ErrTokenNotFound = errors.New("access token not found")

// cachedToken is the JSON shape stored per (user, platform).
type cachedToken struct {
	AccessToken string    `json:"access_token"`
	CachedAt    time.Time `json:"cached_at"`
}

// TokenCache stores current access tokens in Valkey (Redis-compatible) so
// mention and hashtag fetchers on other instances can read them without a
// database round-trip. The database row remains the source of truth.
type TokenCache struct {
	client valkey.Client
	prefix string
}

// NewTokenCache creates a Valkey-backed token cache.
// addr example: "127.0.0.1:6379"; prefix helps namespace keys.
func NewTokenCache(addr string, prefix string) (*TokenCache, error) {
	cli, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{addr}})
	if err != nil {
		return nil, err
	}
	if prefix == "" {
		prefix = "social:"
	}
	return &TokenCache{client: cli, prefix: prefix}, nil
}

// NewTokenCacheWithClient creates a token cache with an existing client.
func NewTokenCacheWithClient(client valkey.Client, prefix string) *TokenCache {
	if prefix == "" {
		prefix = "social:"
	}
	return &TokenCache{client: client, prefix: prefix}
}

// key builds the cache key for an access token.
// Format: <prefix><userID>:<platform>:token
func (c *TokenCache) key(userID, platform string) string {
	return fmt.Sprintf("%s%s:%s:token", c.prefix, userID, platform)
}

// Publish stores an access token with TTL.
func (c *TokenCache) Publish(ctx context.Context, userID, platform, accessToken string, ttl time.Duration) error {
	data, err := json.Marshal(cachedToken{
		AccessToken: accessToken,
		CachedAt:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal cached token: %w", err)
	}
	key := c.key(userID, platform)
	return c.client.Do(ctx, c.client.B().Set().Key(key).Value(string(data)).Ex(ttl).Build()).Error()
}

// Load retrieves an access token from cache.
func (c *TokenCache) Load(ctx context.Context, userID, platform string) (string, error) {
	key := c.key(userID, platform)

	res := c.client.Do(ctx, c.client.B().Get().Key(key).Build())
	if res.Error() != nil {
		if valkey.IsValkeyNil(res.Error()) {
			return "", ErrTokenNotFound
		}
		return "", res.Error()
	}

	val, err := res.ToString()
	if err != nil || val == "" {
		return "", ErrTokenNotFound
	}

	var ct cachedToken
	if err := json.Unmarshal([]byte(val), &ct); err != nil {
		return "", fmt.Errorf("failed to unmarshal cached token: %w", err)
	}
	return ct.AccessToken, nil
}

// Evict removes an access token from cache.
func (c *TokenCache) Evict(ctx context.Context, userID, platform string) error {
	key := c.key(userID, platform)
	return c.client.Do(ctx, c.client.B().Del().Key(key).Build()).Error()
}
