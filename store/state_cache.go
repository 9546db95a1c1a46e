package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	valkey "github.com/valkey-io/valkey-go"
)

// ErrStateAlreadyUsed indicates a state value was presented more than once.
var ErrStateAlreadyUsed = errors.New("oauth state already used")

// StateCache records consumed OAuth state values in Valkey, making the
// consume-exactly-once invariant hold across service instances. States are
// hashed before use as keys so the raw value never appears in the cache.
type StateCache struct {
	client valkey.Client
	prefix string
	ttl    time.Duration
}

// NewStateCacheWithClient creates a state cache with an existing client.
// TTL bounds how long a consumed state is remembered; it only needs to
// outlive the state's own validity window.
func NewStateCacheWithClient(client valkey.Client, prefix string, ttl time.Duration) *StateCache {
	if prefix == "" {
		prefix = "social:"
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &StateCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *StateCache) key(state string) string {
	sum := sha256.Sum256([]byte(state))
	return c.prefix + "state:" + hex.EncodeToString(sum[:])
}

// Consume marks a state as used. The first call for a value succeeds; every
// later call returns ErrStateAlreadyUsed. The check-and-set is a single
// SET NX, so concurrent callbacks with the same state cannot both pass.
func (c *StateCache) Consume(ctx context.Context, state string) error {
	key := c.key(state)
	res := c.client.Do(ctx, c.client.B().Set().Key(key).Value("1").Nx().Ex(c.ttl).Build())
	if res.Error() != nil {
		if valkey.IsValkeyNil(res.Error()) {
			return ErrStateAlreadyUsed
		}
		return res.Error()
	}
	return nil
}
