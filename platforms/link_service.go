package platforms

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/reputrace/social-link/models"
)

// TokenExchanger is the token-endpoint dependency of the link service.
type TokenExchanger interface {
	ExchangeCode(ctx context.Context, platformID, code string) (*models.OAuthTokens, error)
	RefreshToken(ctx context.Context, platformID, refreshToken string) (*models.OAuthTokens, error)
}

// ProfileReader is the profile-endpoint dependency of the link service.
type ProfileReader interface {
	FetchProfile(ctx context.Context, platformID, accessToken string) (*models.SocialProfile, error)
}

// AccountStore is the persistence dependency of the link service. The upsert
// is the sole write path of the link flow and must be atomic on the
// (user_id, platform) key.
type AccountStore interface {
	Upsert(ctx context.Context, account *models.LinkedAccount) error
	Get(ctx context.Context, userID, platform string) (*models.LinkedAccount, error)
	ListByUser(ctx context.Context, userID string) ([]models.LinkedAccount, error)
	Disconnect(ctx context.Context, userID, platform string) error
	UpdateTokens(ctx context.Context, userID, platform, accessToken, refreshToken string, expiry *time.Time) error
}

// StateConsumer marks a state value as used. Implementations back the
// consumed-exactly-once guarantee; a nil consumer falls back to stateless
// verification only.
type StateConsumer interface {
	Consume(ctx context.Context, state string) error
}

// TokenPublisher caches the current access token for other service
// instances. Failures are logged, never surfaced: the cache is an
// optimization, not a source of truth.
type TokenPublisher interface {
	Publish(ctx context.Context, userID, platform, accessToken string, ttl time.Duration) error
	Evict(ctx context.Context, userID, platform string) error
}

// LinkResult is the outcome of a link or disconnect operation. Internal
// errors never escape past this shape.
type LinkResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	// Err carries the underlying typed error for programmatic inspection;
	// it is not serialized.
	Err error `json:"-"`
}

func failure(err error) LinkResult {
	return LinkResult{Success: false, Message: err.Error(), Err: err}
}

// LinkService orchestrates the account linking lifecycle: state validation,
// code exchange, profile retrieval, persistence, and token refresh.
type LinkService struct {
	States   *StateCodec
	Exchange TokenExchanger
	Profiles ProfileReader
	Accounts AccountStore

	// Optional collaborators.
	StateGuard StateConsumer
	TokenCache TokenPublisher
}

// LinkAccount runs the full link flow for a callback. Linking is strict:
// any failure aborts the operation with nothing persisted. In particular a
// profile-fetch failure discards the freshly exchanged tokens rather than
// writing a partial row.
func (s *LinkService) LinkAccount(ctx context.Context, userID, platform, code, state string) LinkResult {
	if err := s.States.Verify(state, userID, platform); err != nil {
		return failure(err)
	}
	if s.StateGuard != nil {
		if err := s.StateGuard.Consume(ctx, state); err != nil {
			return failure(&InvalidStateError{Reason: "state already used"})
		}
	}

	tokens, err := s.Exchange.ExchangeCode(ctx, platform, code)
	if err != nil {
		return failure(err)
	}

	profile, err := s.Profiles.FetchProfile(ctx, platform, tokens.AccessToken)
	if err != nil {
		return failure(err)
	}

	now := time.Now().UTC()
	account := &models.LinkedAccount{
		ID:           uuid.NewString(),
		UserID:       userID,
		Platform:     platform,
		Username:     profile.Username,
		ProfileURL:   profile.ProfileURL,
		AvatarURL:    profile.AvatarURL,
		Followers:    profile.Followers,
		Following:    profile.Following,
		Posts:        profile.Posts,
		Verified:     profile.Verified,
		Connected:    true,
		LastSync:     now,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		TokenExpiry:  expiryFrom(now, tokens.ExpiresIn),
	}
	if err := s.Accounts.Upsert(ctx, account); err != nil {
		return failure(err)
	}

	s.publishToken(ctx, userID, platform, tokens.AccessToken, tokens.ExpiresIn)
	return LinkResult{Success: true}
}

// DisconnectAccount soft-disconnects a linked account: connected=false,
// tokens and expiry cleared, profile counts retained. Idempotent.
func (s *LinkService) DisconnectAccount(ctx context.Context, userID, platform string) LinkResult {
	if err := s.Accounts.Disconnect(ctx, userID, platform); err != nil {
		return failure(err)
	}
	if s.TokenCache != nil {
		if err := s.TokenCache.Evict(ctx, userID, platform); err != nil {
			log.Printf("[link] token cache evict failed for %s/%s: %v", userID, platform, err)
		}
	}
	return LinkResult{Success: true}
}

// ListAccounts returns the user's linked accounts, platform-sorted. Listing
// is lenient: a store failure degrades to an empty list so the dashboard
// renders rather than breaks.
func (s *LinkService) ListAccounts(ctx context.Context, userID string) []models.LinkedAccount {
	accounts, err := s.Accounts.ListByUser(ctx, userID)
	if err != nil {
		log.Printf("[link] list accounts failed for %s: %v", userID, err)
		return []models.LinkedAccount{}
	}
	return accounts
}

// RefreshTokens exchanges the stored refresh token for a fresh access token.
// It fails closed: false on a missing record, a missing refresh token (an
// expected state on platforms that never issue one), or any exchange or
// store failure. A failed refresh leaves the stored tokens untouched.
func (s *LinkService) RefreshTokens(ctx context.Context, userID, platform string) bool {
	account, err := s.Accounts.Get(ctx, userID, platform)
	if err != nil || account == nil {
		return false
	}
	if account.RefreshToken == "" {
		return false
	}

	tokens, err := s.Exchange.RefreshToken(ctx, platform, account.RefreshToken)
	if err != nil {
		return false
	}

	// Some platforms rotate refresh tokens, some return none on refresh.
	// Carry the previous one forward so the account can be refreshed again.
	refreshToken := tokens.RefreshToken
	if refreshToken == "" {
		refreshToken = account.RefreshToken
	}

	now := time.Now().UTC()
	expiry := expiryFrom(now, tokens.ExpiresIn)
	if err := s.Accounts.UpdateTokens(ctx, userID, platform, tokens.AccessToken, refreshToken, expiry); err != nil {
		return false
	}

	s.publishToken(ctx, userID, platform, tokens.AccessToken, tokens.ExpiresIn)
	return true
}

// NeedsRefresh reports whether the stored access token is expired or expires
// within the leeway window. A nil expiry means the token never expires.
func (s *LinkService) NeedsRefresh(ctx context.Context, userID, platform string, leeway time.Duration) (bool, error) {
	account, err := s.Accounts.Get(ctx, userID, platform)
	if err != nil {
		return false, err
	}
	if account == nil || !account.Connected {
		return false, nil
	}
	if account.TokenExpiry == nil {
		return false, nil
	}
	return time.Now().UTC().Add(leeway).After(*account.TokenExpiry), nil
}

func (s *LinkService) publishToken(ctx context.Context, userID, platform, accessToken string, expiresIn int64) {
	if s.TokenCache == nil {
		return
	}
	ttl := time.Duration(expiresIn) * time.Second
	if expiresIn <= 0 {
		ttl = 24 * time.Hour
	}
	if err := s.TokenCache.Publish(ctx, userID, platform, accessToken, ttl); err != nil {
		log.Printf("[link] token cache publish failed for %s/%s: %v", userID, platform, err)
	}
}

func expiryFrom(now time.Time, expiresIn int64) *time.Time {
	if expiresIn <= 0 {
		// No expires_in from the provider: treated as non-expiring for
		// refresh scheduling.
		return nil
	}
	t := now.Add(time.Duration(expiresIn) * time.Second)
	return &t
}

// IsInvalidState reports whether err (or a LinkResult.Err) is a state
// verification failure.
func IsInvalidState(err error) bool {
	var ise *InvalidStateError
	return errors.As(err, &ise)
}
