package store

import (
	"bytes"
	"strings"
	"testing"
)

func TestTokenCipher_SealOpenRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 32)
	cipher, err := NewTokenCipher(key)
	if err != nil {
		t.Fatalf("NewTokenCipher failed: %v", err)
	}

	sealed, err := cipher.Seal("tok1")
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if sealed == "tok1" {
		t.Error("sealed value equals plaintext")
	}
	if !strings.HasPrefix(sealed, "enc:") {
		t.Errorf("sealed value missing prefix: %s", sealed)
	}

	opened, err := cipher.Open(sealed)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if opened != "tok1" {
		t.Errorf("round trip = %q, want tok1", opened)
	}
}

func TestTokenCipher_EmptyTokenPassesThrough(t *testing.T) {
	cipher, err := NewTokenCipher(bytes.Repeat([]byte{0x42}, 32))
	if err != nil {
		t.Fatalf("NewTokenCipher failed: %v", err)
	}
	sealed, err := cipher.Seal("")
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if sealed != "" {
		t.Errorf("empty token sealed to %q", sealed)
	}
}

func TestTokenCipher_LegacyPlaintextOpens(t *testing.T) {
	// Rows written before sealing was enabled stay readable.
	cipher, err := NewTokenCipher(bytes.Repeat([]byte{0x42}, 32))
	if err != nil {
		t.Fatalf("NewTokenCipher failed: %v", err)
	}
	opened, err := cipher.Open("legacy-plain-token")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if opened != "legacy-plain-token" {
		t.Errorf("legacy token = %q", opened)
	}
}

func TestTokenCipher_WrongKeyFailsToOpen(t *testing.T) {
	c1, _ := NewTokenCipher(bytes.Repeat([]byte{0x01}, 32))
	c2, _ := NewTokenCipher(bytes.Repeat([]byte{0x02}, 32))

	sealed, err := c1.Seal("tok1")
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if _, err := c2.Open(sealed); err == nil {
		t.Error("opening with the wrong key succeeded")
	}
}

func TestTokenCipher_BadKeyLength(t *testing.T) {
	if _, err := NewTokenCipher([]byte("short")); err != ErrBadCipherKey {
		t.Errorf("expected ErrBadCipherKey, got %v", err)
	}
}

func TestNoopTokenCipher_Passthrough(t *testing.T) {
	cipher := NoopTokenCipher()
	sealed, err := cipher.Seal("tok1")
	if err != nil || sealed != "tok1" {
		t.Errorf("Seal = %q, %v; want passthrough", sealed, err)
	}
	opened, err := cipher.Open("tok1")
	if err != nil || opened != "tok1" {
		t.Errorf("Open = %q, %v; want passthrough", opened, err)
	}
}
