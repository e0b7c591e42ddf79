package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/auth"
)

// loginFailed is the only message a failed login ever produces, so the
// response does not reveal which half of the credentials was wrong.
const loginFailed = "invalid email or password"

// GitHubIdentity is the part of auth.GitHubProvider the service uses.
type GitHubIdentity interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GitHubUser, error)
}

// AdminCredentials is the single admin account from config.
type AdminCredentials struct {
	Email        string
	PasswordHash string
	GitHubLogin  string // empty disables GitHub login
}

// AuthService signs the site owner in.
type AuthService struct {
	creds     AdminCredentials
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	github    GitHubIdentity // nil when GitHub login is off
	logger    *slog.Logger
}

func NewAuthService(
	creds AdminCredentials,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	github GitHubIdentity,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		creds:     creds,
		tokens:    tokens,
		passwords: passwords,
		github:    github,
		logger:    logger,
	}
}

// Session is an issued admin session.
type Session struct {
	Subject string
	Token   string
}

// Login checks email and password against the configured admin.
func (s *AuthService) Login(email, password string) (*Session, error) {
	if s.creds.Email == "" || s.creds.PasswordHash == "" {
		return nil, apperror.NotConfigured("password login")
	}

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperror.Unauthorized(loginFailed)
	}

	match := subtle.ConstantTimeCompare(
		[]byte(strings.ToLower(email)),
		[]byte(strings.ToLower(s.creds.Email)),
	) == 1
	if !match {
		s.passwords.Burn(password)
		s.logger.Warn("admin login rejected", slog.String("reason", "unknown email"))
		return nil, apperror.Unauthorized(loginFailed)
	}

	if err := s.passwords.Verify(s.creds.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			// a malformed hash in config is an operator error, not a bad login
			s.logger.Error("admin password hash is unusable", slog.String("error", err.Error()))
		} else {
			s.logger.Warn("admin login rejected", slog.String("reason", "wrong password"))
		}
		return nil, apperror.Unauthorized(loginFailed)
	}

	return s.issue(auth.AdminSubject(s.creds.Email))
}

// GitHubEnabled reports whether GitHub login is available.
func (s *AuthService) GitHubEnabled() bool {
	return s.github != nil && s.creds.GitHubLogin != ""
}

// GitHubAuthURL returns the GitHub approval URL for state.
func (s *AuthService) GitHubAuthURL(state string) (string, error) {
	if !s.GitHubEnabled() {
		return "", apperror.NotConfigured("GitHub login")
	}
	return s.github.AuthURL(state), nil
}

// GitHubCallback completes a GitHub login. Only the configured login may
// sign in; anyone else gets 403.
func (s *AuthService) GitHubCallback(ctx context.Context, code string) (*Session, error) {
	if !s.GitHubEnabled() {
		return nil, apperror.NotConfigured("GitHub login")
	}
	if code == "" {
		return nil, apperror.ValidationFailed("code", "missing authorization code")
	}

	user, err := s.github.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("service/auth: GitHub exchange: %w", err)
	}
	if !strings.EqualFold(user.Login, s.creds.GitHubLogin) {
		s.logger.Warn("GitHub login rejected",
			slog.String("login", user.Login),
			slog.Int64("githubID", user.ID),
		)
		return nil, apperror.Forbidden("this GitHub account is not allowed to administer the site")
	}

	return s.issue(auth.GitHubSubject(user.Login))
}

// Authenticate validates a session token and returns its subject.
func (s *AuthService) Authenticate(token string) (string, error) {
	subject, err := s.tokens.Validate(token)
	if err != nil {
		return "", apperror.Unauthorized("valid authentication required")
	}
	return subject, nil
}

func (s *AuthService) issue(subject string) (*Session, error) {
	token, err := s.tokens.Generate(subject)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing token for %s: %w", subject, err)
	}
	s.logger.Info("admin signed in", slog.String("subject", subject))
	return &Session{Subject: subject, Token: token}, nil
}
