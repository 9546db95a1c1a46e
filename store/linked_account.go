package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/reputrace/social-link/models"
)

// LinkedAccountStore provides operations for linked social accounts.
// All token values pass through the configured cipher so plaintext
// credentials never reach the database when sealing is enabled.
type LinkedAccountStore struct {
	DB     *gorm.DB
	Cipher *TokenCipher
}

// NewLinkedAccountStore creates a store without token sealing.
func NewLinkedAccountStore(db *gorm.DB) *LinkedAccountStore {
	return &LinkedAccountStore{DB: db, Cipher: NoopTokenCipher()}
}

// NewSealedLinkedAccountStore creates a store that seals tokens at rest.
func NewSealedLinkedAccountStore(db *gorm.DB, cipher *TokenCipher) *LinkedAccountStore {
	if cipher == nil {
		cipher = NoopTokenCipher()
	}
	return &LinkedAccountStore{DB: db, Cipher: cipher}
}

// Upsert creates or overwrites the linked account keyed by
// (user_id, platform). The conflict resolution is a single statement, so
// concurrent relinks for the same key resolve last-write-wins at the row
// level.
func (s *LinkedAccountStore) Upsert(ctx context.Context, account *models.LinkedAccount) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	sealed := *account
	var err error
	if sealed.AccessToken, err = s.Cipher.Seal(account.AccessToken); err != nil {
		return err
	}
	if sealed.RefreshToken, err = s.Cipher.Seal(account.RefreshToken); err != nil {
		return err
	}

	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "platform"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"username", "profile_url", "avatar_url",
			"followers", "following", "posts", "verified",
			"connected", "last_sync",
			"access_token", "refresh_token", "token_expiry",
			"updated_at",
		}),
	}).Create(&sealed).Error
}

// Get returns the linked account for a (user, platform) pair, or nil when
// none exists.
func (s *LinkedAccountStore) Get(ctx context.Context, userID, platform string) (*models.LinkedAccount, error) {
	var account models.LinkedAccount
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND platform = ?", userID, platform).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if account.AccessToken, err = s.Cipher.Open(account.AccessToken); err != nil {
		return nil, err
	}
	if account.RefreshToken, err = s.Cipher.Open(account.RefreshToken); err != nil {
		return nil, err
	}
	return &account, nil
}

// ListByUser returns all linked accounts for a user, platform-sorted. Token
// fields are cleared: this path backs the dashboard read model and must
// never expose credentials.
func (s *LinkedAccountStore) ListByUser(ctx context.Context, userID string) ([]models.LinkedAccount, error) {
	var accounts []models.LinkedAccount
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("platform ASC").
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		accounts[i].AccessToken = ""
		accounts[i].RefreshToken = ""
	}
	return accounts, nil
}

// Disconnect marks the matching rows disconnected and clears credentials.
// The row is retained for history. Disconnecting an absent or already
// disconnected account is a no-op success.
func (s *LinkedAccountStore) Disconnect(ctx context.Context, userID, platform string) error {
	return s.DB.WithContext(ctx).
		Model(&models.LinkedAccount{}).
		Where("user_id = ? AND platform = ?", userID, platform).
		Updates(map[string]interface{}{
			"connected":     false,
			"access_token":  "",
			"refresh_token": "",
			"token_expiry":  nil,
			"updated_at":    time.Now().UTC(),
		}).Error
}

// UpdateTokens overwrites the stored credentials after a successful refresh.
func (s *LinkedAccountStore) UpdateTokens(ctx context.Context, userID, platform, accessToken, refreshToken string, expiry *time.Time) error {
	sealedAccess, err := s.Cipher.Seal(accessToken)
	if err != nil {
		return err
	}
	sealedRefresh, err := s.Cipher.Seal(refreshToken)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).
		Model(&models.LinkedAccount{}).
		Where("user_id = ? AND platform = ?", userID, platform).
		Updates(map[string]interface{}{
			"access_token":  sealedAccess,
			"refresh_token": sealedRefresh,
			"token_expiry":  expiry,
			"updated_at":    time.Now().UTC(),
		}).Error
}
