package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenExpiry is the validity horizon of issued tokens.
const DefaultTokenExpiry = 7 * 24 * time.Hour

// TokenCodec signs and verifies stateless bearer tokens.
// Issuing is a pure function of the user id and the expiry horizon;
// there is no server-side revocation, so logout is advisory only.
type TokenCodec struct {
	secret []byte
	expiry time.Duration
}

// NewTokenCodec creates a codec with the given signing secret.
// A zero expiry falls back to the 7 day default.
func NewTokenCodec(secret string, expiry time.Duration) *TokenCodec {
	if expiry <= 0 {
		expiry = DefaultTokenExpiry
	}

	return &TokenCodec{secret: []byte(secret), expiry: expiry}
}

// Sign issues a token whose subject is the user id.
func (c *TokenCodec) Sign(userID uint64) (string, error) {
	now := time.Now()

	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.expiry)),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify checks a token's signature and expiry and returns its subject.
// Any failure maps to ErrInvalidToken; callers never learn why a token
// was refused.
func (c *TokenCodec) Verify(token string) (uint64, error) {
	parsed, err := jwt.ParseWithClaims(
		token,
		&jwt.RegisteredClaims{},
		func(_ *jwt.Token) (interface{}, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}

	return userID, nil
}
