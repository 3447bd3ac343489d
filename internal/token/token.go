// Package token implements the signed-token codec shared by the identity
// service and the API gateway: compact HS256 JWTs carrying a subject, an
// issue time, and an expiry.
//
// Verification and claim extraction are separate operations: the gateway
// only needs Verify and Subject, while the refresh flow additionally
// cross-checks claims against the stored record.
package token

import (
	"time"

	"github.com/dmitrijs2005/chatapp/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Codec signs and verifies tokens with a symmetric secret. The secret is
// set once at construction and never mutated, so a single Codec is safe
// for concurrent use.
type Codec struct {
	secret []byte
}

// NewCodec returns a codec signing with the given secret.
func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Issue creates a signed token for subject expiring after ttl.
func (c *Codec) Issue(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})

	signed, err := t.SignedString(c.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Verify reports whether tokenString is well-formed, carries a valid
// signature, and has not expired. It never returns an error: malformed,
// tampered, and expired tokens all yield false.
func (c *Codec) Verify(tokenString string) bool {
	_, err := c.parse(tokenString)
	return err == nil
}

// Subject returns the subject claim. Fails with common.ErrTokenInvalid if
// the token cannot be parsed and verified.
func (c *Codec) Subject(tokenString string) (string, error) {
	claims, err := c.parse(tokenString)
	if err != nil {
		return "", common.ErrTokenInvalid
	}
	return claims.Subject, nil
}

// ExpiresAt returns the expiry claim. Fails with common.ErrTokenInvalid if
// the token cannot be parsed and verified.
func (c *Codec) ExpiresAt(tokenString string) (time.Time, error) {
	claims, err := c.parse(tokenString)
	if err != nil {
		return time.Time{}, common.ErrTokenInvalid
	}
	return claims.ExpiresAt.Time, nil
}

func (c *Codec) parse(tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}

	t, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if !t.Valid {
		return nil, common.ErrTokenInvalid
	}

	return claims, nil
}
