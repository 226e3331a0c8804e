package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token validation failures. Callers that only care about "valid or not"
// can treat all three the same; the split exists so logs can tell a clock
// problem from a tampered token from line noise.
var (
	// ErrTokenExpired means the signature verified but the expiry passed.
	ErrTokenExpired = errors.New("session token expired")

	// ErrTokenInvalidSignature means the token was not signed with the
	// current secret.
	ErrTokenInvalidSignature = errors.New("session token signature invalid")

	// ErrTokenMalformed means the string could not be parsed as a token.
	ErrTokenMalformed = errors.New("session token malformed")
)

// Claims is the identifying payload embedded in a session token. Only
// non-sensitive fields go in here: a leaked token payload must never expose
// the password hash.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"id"`
	Email  string `json:"email"`
}

// issueToken produces a signed, self-contained session token for the user
// with an absolute expiry derived from ttl.
func issueToken(user *User, secret []byte, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: user.ID,
		Email:  user.Email,
	})

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}

	return signed, nil
}

// parseToken verifies a session token against the secret and returns its
// claims. Fails with ErrTokenExpired, ErrTokenInvalidSignature, or
// ErrTokenMalformed.
func parseToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		// Only accept HMAC — a token re-signed with alg=none or an
		// asymmetric method must not verify.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return secret, nil
	})

	switch {
	case err == nil && token.Valid:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, ErrTokenInvalidSignature
	default:
		return nil, ErrTokenMalformed
	}
}
