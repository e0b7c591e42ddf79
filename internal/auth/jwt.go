// Package auth issues and checks admin sessions.
//
// There is exactly one admin: the site owner. They sign in either with the
// email and bcrypt password hash from config, or through GitHub when the
// GitHub login matches the configured one. Either way the result is a
// signed JWT carried in an HttpOnly cookie named "token".
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	issuer = "portfolio"

	// SessionTTL is how long an admin session lasts. The admin panel is used
	// in short bursts, so there is no refresh token.
	SessionTTL = 12 * time.Hour
)

// Subject prefixes name how the admin signed in.
const (
	SubjectAdminPrefix  = "admin:"
	SubjectGitHubPrefix = "github:"
)

// AdminSubject is the token subject for a password login.
func AdminSubject(email string) string {
	return SubjectAdminPrefix + strings.ToLower(email)
}

// GitHubSubject is the token subject for a GitHub login.
func GitHubSubject(login string) string {
	return SubjectGitHubPrefix + strings.ToLower(login)
}

// TokenService signs and validates session tokens with HMAC-SHA256.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// NewTokenService rejects secrets shorter than 16 characters; anything
// shorter is brute-forceable offline from a single captured token.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret), now: time.Now}, nil
}

// Generate issues a session token for subject, valid for SessionTTL.
func (s *TokenService) Generate(subject string) (string, error) {
	return s.GenerateWithTTL(subject, SessionTTL)
}

// GenerateWithTTL is Generate with an explicit lifetime. Tests use a
// negative ttl to get an already expired token.
func (s *TokenService) GenerateWithTTL(subject string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("auth: token subject must not be empty")
	}
	now := s.now()

	c := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate checks signature, algorithm, issuer and expiry, and returns the
// subject.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	var c jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&c,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		// pinning the method blocks "alg: none" and RS/HS confusion
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", errors.New("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}
	if !token.Valid {
		return "", errors.New("auth: invalid token claims")
	}
	if c.Subject == "" {
		return "", errors.New("auth: token has no subject")
	}
	return c.Subject, nil
}
