// Package auth verifies bearer tokens issued by the external identity service
// and resolves them to a caller ID.
package auth

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	apperrors "campusnet/backend/pkg/errors"
)

var errMissingSubject = errors.New("token carries no user ID")

// Claims accepts both the standard subject claim and the legacy
// {"user":{"id":...}} payload.
type Claims struct {
	User *LegacyUser `json:"user,omitempty"`
	jwt.RegisteredClaims
}

// LegacyUser is the user object embedded by older token issuers
type LegacyUser struct {
	ID string `json:"id"`
}

// CallerID returns the subject, falling back to the legacy user ID
func (c *Claims) CallerID() string {
	if c.Subject != "" {
		return c.Subject
	}
	if c.User != nil {
		return c.User.ID
	}
	return ""
}

// JWTVerifier checks HS256 tokens against a shared secret
type JWTVerifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewJWTVerifier creates a verifier. When issuer is non-empty the iss claim must match it.
func NewJWTVerifier(secret, issuer string) (*JWTVerifier, error) {
	if secret == "" {
		return nil, apperrors.NewConfigMissingRequired("JWT_SECRET")
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	return &JWTVerifier{
		secret: []byte(secret),
		parser: jwt.NewParser(opts...),
	}, nil
}

// stripScheme drops a case-insensitive "Bearer" scheme and surrounding whitespace
func stripScheme(header string) string {
	header = strings.TrimSpace(header)
	const scheme = "bearer"
	if len(header) < len(scheme) || !strings.EqualFold(header[:len(scheme)], scheme) {
		return header
	}
	rest := header[len(scheme):]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return header
	}
	return strings.TrimSpace(rest)
}

// Verify validates a raw token, with or without the "Bearer " prefix, and returns the caller ID
func (v *JWTVerifier) Verify(raw string) (string, error) {
	raw = stripScheme(raw)
	if raw == "" {
		return "", apperrors.NewMissingCredential()
	}

	claims := &Claims{}
	_, err := v.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return "", apperrors.NewInvalidCredential(err)
	}

	id := claims.CallerID()
	if id == "" {
		return "", apperrors.NewInvalidCredential(errMissingSubject)
	}
	return id, nil
}
