package platforms

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// stateSeparator joins the components of an unsigned state value. User IDs
// containing it cannot be encoded; Encode rejects them up front rather than
// producing a state that fails to decompose at the callback.
const stateSeparator = "_"

// StateCodec builds and verifies the OAuth state parameter that binds a
// callback to the (user, platform) pair that started the flow.
//
// The wire format is {userID}_{platform}_{timestampMillis}. When SigningKey
// is set the codec instead issues HS256 JWTs carrying the same fields, and
// rejects unsigned states outright.
type StateCodec struct {
	SigningKey []byte
	// MaxAge bounds how old a state may be at verification. Zero disables
	// the check.
	MaxAge time.Duration
}

type stateClaims struct {
	Platform string `json:"plt"`
	jwt.RegisteredClaims
}

// Encode builds a state value for a user and platform.
func (c *StateCodec) Encode(userID, platform string) (string, error) {
	if userID == "" || platform == "" {
		return "", &InvalidStateError{Reason: "empty user or platform"}
	}
	now := time.Now()
	if len(c.SigningKey) > 0 {
		claims := stateClaims{
			Platform: platform,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:  userID,
				IssuedAt: jwt.NewNumericDate(now),
			},
		}
		return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.SigningKey)
	}
	if strings.Contains(userID, stateSeparator) {
		return "", fmt.Errorf("user id %q contains the state separator; configure state signing", userID)
	}
	return userID + stateSeparator + platform + stateSeparator + strconv.FormatInt(now.UnixMilli(), 10), nil
}

// Verify checks that state decomposes to the same (userID, platform) pair.
// Any mismatch or malformation yields an InvalidStateError; callers must not
// proceed to the token exchange on error.
func (c *StateCodec) Verify(state, userID, platform string) error {
	if state == "" {
		return &InvalidStateError{Reason: "missing state"}
	}
	if len(c.SigningKey) > 0 {
		return c.verifySigned(state, userID, platform)
	}
	return c.verifyPlain(state, userID, platform)
}

func (c *StateCodec) verifyPlain(state, userID, platform string) error {
	// Decompose from the right: the timestamp and platform never contain the
	// separator, so a user ID that does still parses correctly.
	tsSep := strings.LastIndex(state, stateSeparator)
	if tsSep <= 0 {
		return &InvalidStateError{Reason: "malformed state"}
	}
	millis, err := strconv.ParseInt(state[tsSep+1:], 10, 64)
	if err != nil {
		return &InvalidStateError{Reason: "malformed state timestamp"}
	}
	rest := state[:tsSep]
	pSep := strings.LastIndex(rest, stateSeparator)
	if pSep <= 0 {
		return &InvalidStateError{Reason: "malformed state"}
	}
	if rest[pSep+1:] != platform {
		return &InvalidStateError{Reason: "platform mismatch"}
	}
	if rest[:pSep] != userID {
		return &InvalidStateError{Reason: "user mismatch"}
	}
	if c.MaxAge > 0 {
		issued := time.UnixMilli(millis)
		if time.Since(issued) > c.MaxAge {
			return &InvalidStateError{Reason: "state expired"}
		}
	}
	return nil
}

func (c *StateCodec) verifySigned(state, userID, platform string) error {
	var claims stateClaims
	_, err := jwt.ParseWithClaims(state, &claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.SigningKey, nil
	})
	if err != nil {
		return &InvalidStateError{Reason: "signature verification failed"}
	}
	if claims.Subject != userID {
		return &InvalidStateError{Reason: "user mismatch"}
	}
	if claims.Platform != platform {
		return &InvalidStateError{Reason: "platform mismatch"}
	}
	if c.MaxAge > 0 && claims.IssuedAt != nil {
		if time.Since(claims.IssuedAt.Time) > c.MaxAge {
			return &InvalidStateError{Reason: "state expired"}
		}
	}
	return nil
}
