package store

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/reputrace/social-link/models"
)

var storeTestCounter int64 = time.Now().UnixNano()

func uniqueUserID(prefix string) string {
	storeTestCounter++
	return fmt.Sprintf("%s-%d", prefix, storeTestCounter)
}

func requireTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := getTestGormDB()
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if db == nil {
		t.Skip("No database connection available")
	}
	return db
}

func cleanupAccounts(db *gorm.DB, userIDs ...string) {
	for _, id := range userIDs {
		db.Exec(`DELETE FROM linked_accounts WHERE user_id = ?`, id)
	}
}

func sampleAccount(userID, platform string) *models.LinkedAccount {
	expiry := time.Now().UTC().Add(2 * time.Hour)
	return &models.LinkedAccount{
		UserID:       userID,
		Platform:     platform,
		Username:     "alice",
		ProfileURL:   "https://x.com/alice",
		Followers:    100,
		Following:    42,
		Posts:        512,
		Connected:    true,
		LastSync:     time.Now().UTC(),
		AccessToken:  "tok1",
		RefreshToken: "ref1",
		TokenExpiry:  &expiry,
	}
}

func TestLinkedAccountStore_UpsertCreatesAndOverwrites(t *testing.T) {
	db := requireTestDB(t)
	s := NewLinkedAccountStore(db)
	ctx := context.Background()

	userID := uniqueUserID("upsert")
	defer cleanupAccounts(db, userID)

	if err := s.Upsert(ctx, sampleAccount(userID, "x")); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	row, err := s.Get(ctx, userID, "x")
	if err != nil || row == nil {
		t.Fatalf("Get after create: %v, %v", row, err)
	}
	if row.Username != "alice" || row.AccessToken != "tok1" {
		t.Errorf("unexpected row: %+v", row)
	}

	// Relink overwrites the snapshot and tokens in place.
	updated := sampleAccount(userID, "x")
	updated.Username = "alice2"
	updated.Followers = 150
	updated.AccessToken = "tok2"
	if err := s.Upsert(ctx, updated); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	row, err = s.Get(ctx, userID, "x")
	if err != nil || row == nil {
		t.Fatalf("Get after overwrite: %v, %v", row, err)
	}
	if row.Username != "alice2" || row.Followers != 150 || row.AccessToken != "tok2" {
		t.Errorf("overwrite not applied: %+v", row)
	}

	var count int64
	db.Raw(`SELECT COUNT(*) FROM linked_accounts WHERE user_id = ?`, userID).Row().Scan(&count)
	if count != 1 {
		t.Errorf("expected a single row after relink, got %d", count)
	}
}

func TestLinkedAccountStore_GetAbsentReturnsNil(t *testing.T) {
	db := requireTestDB(t)
	s := NewLinkedAccountStore(db)

	row, err := s.Get(context.Background(), uniqueUserID("absent"), "x")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if row != nil {
		t.Errorf("expected nil for absent row, got %+v", row)
	}
}

func TestLinkedAccountStore_ListByUserSortsAndHidesTokens(t *testing.T) {
	db := requireTestDB(t)
	s := NewLinkedAccountStore(db)
	ctx := context.Background()

	userID := uniqueUserID("list")
	defer cleanupAccounts(db, userID)

	for _, platform := range []string{"tiktok", "facebook", "x"} {
		if err := s.Upsert(ctx, sampleAccount(userID, platform)); err != nil {
			t.Fatalf("upsert %s failed: %v", platform, err)
		}
	}

	accounts, err := s.ListByUser(ctx, userID)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(accounts) != 3 {
		t.Fatalf("expected 3 accounts, got %d", len(accounts))
	}
	wantOrder := []string{"facebook", "tiktok", "x"}
	for i, want := range wantOrder {
		if accounts[i].Platform != want {
			t.Errorf("position %d = %s, want %s", i, accounts[i].Platform, want)
		}
		if accounts[i].AccessToken != "" || accounts[i].RefreshToken != "" {
			t.Errorf("tokens leaked into the list read model: %+v", accounts[i])
		}
	}
}

func TestLinkedAccountStore_DisconnectClearsCredentialsKeepsRow(t *testing.T) {
	db := requireTestDB(t)
	s := NewLinkedAccountStore(db)
	ctx := context.Background()

	userID := uniqueUserID("disconnect")
	defer cleanupAccounts(db, userID)

	if err := s.Upsert(ctx, sampleAccount(userID, "x")); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := s.Disconnect(ctx, userID, "x"); err != nil {
			t.Fatalf("disconnect %d failed: %v", i+1, err)
		}
	}

	row, err := s.Get(ctx, userID, "x")
	if err != nil || row == nil {
		t.Fatalf("row missing after disconnect: %v, %v", row, err)
	}
	if row.Connected {
		t.Error("still connected")
	}
	if row.AccessToken != "" || row.RefreshToken != "" || row.TokenExpiry != nil {
		t.Errorf("credentials not cleared: %+v", row)
	}
	if row.Username != "alice" || row.Followers != 100 {
		t.Errorf("history lost on disconnect: %+v", row)
	}
}

func TestLinkedAccountStore_UpdateTokens(t *testing.T) {
	db := requireTestDB(t)
	s := NewLinkedAccountStore(db)
	ctx := context.Background()

	userID := uniqueUserID("refresh")
	defer cleanupAccounts(db, userID)

	if err := s.Upsert(ctx, sampleAccount(userID, "linkedin")); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	expiry := time.Now().UTC().Add(time.Hour)
	if err := s.UpdateTokens(ctx, userID, "linkedin", "tok2", "ref1", &expiry); err != nil {
		t.Fatalf("UpdateTokens failed: %v", err)
	}

	row, _ := s.Get(ctx, userID, "linkedin")
	if row.AccessToken != "tok2" || row.RefreshToken != "ref1" {
		t.Errorf("tokens not updated: %+v", row)
	}
	if row.TokenExpiry == nil {
		t.Error("expiry not updated")
	}
	// Profile snapshot is untouched by a token refresh.
	if row.Username != "alice" {
		t.Errorf("username changed on refresh: %q", row.Username)
	}
}

func TestLinkedAccountStore_SealedTokensAtRest(t *testing.T) {
	db := requireTestDB(t)
	cipher, err := NewTokenCipher(bytes.Repeat([]byte{0x42}, 32))
	if err != nil {
		t.Fatalf("NewTokenCipher failed: %v", err)
	}
	s := NewSealedLinkedAccountStore(db, cipher)
	ctx := context.Background()

	userID := uniqueUserID("sealed")
	defer cleanupAccounts(db, userID)

	if err := s.Upsert(ctx, sampleAccount(userID, "x")); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	// The raw column must not contain the plaintext token.
	var rawToken string
	db.Raw(`SELECT access_token FROM linked_accounts WHERE user_id = ? AND platform = 'x'`, userID).Row().Scan(&rawToken)
	if rawToken == "tok1" {
		t.Error("access token stored in plaintext")
	}

	// The store transparently unseals on read.
	row, err := s.Get(ctx, userID, "x")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if row.AccessToken != "tok1" || row.RefreshToken != "ref1" {
		t.Errorf("unsealed tokens wrong: %+v", row)
	}
}
