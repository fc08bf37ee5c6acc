// Package app holds the application services and business logic.
package app

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"paraeval/internal/domain"
	"paraeval/internal/metrics"
)

// AuthService checks credentials against the credential table and manages
// the LoggedOut/LoggedIn session lifecycle.
type AuthService struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	models   domain.Models
	ttl      time.Duration
	now      func() time.Time
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewAuthService creates a new authentication service. New sessions start on
// the first model of models and live for ttl.
func NewAuthService(users domain.UserRepository, sessions domain.SessionRepository, models domain.Models, ttl time.Duration, logger *zap.Logger, m *metrics.Metrics) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		models:   models,
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
		metrics:  m,
	}
}

// Authenticate reports domain.ErrUsernameNotFound or domain.ErrIncorrectPassword
// when the credentials do not match the table.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) error {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUsernameNotFound
	}
	if !passwordMatches(user.Password, password) {
		return domain.ErrIncorrectPassword
	}
	return nil
}

// Login authenticates a user and creates a session positioned on entry 0.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	err := s.Authenticate(ctx, username, password)
	switch {
	case errors.Is(err, domain.ErrUsernameNotFound):
		s.metrics.LoginAttempt(metrics.LoginUnknownUser)
		s.logger.Info("login rejected", zap.String("username", username), zap.String("reason", err.Error()))
		return nil, err
	case errors.Is(err, domain.ErrIncorrectPassword):
		s.metrics.LoginAttempt(metrics.LoginBadPassword)
		s.logger.Info("login rejected", zap.String("username", username), zap.String("reason", err.Error()))
		return nil, err
	case err != nil:
		s.metrics.LoginAttempt(metrics.LoginError)
		return nil, err
	}

	sess, err := s.startSession(ctx, username)
	if err != nil {
		s.metrics.LoginAttempt(metrics.LoginError)
		return nil, err
	}
	s.metrics.LoginAttempt(metrics.LoginSuccess)
	s.logger.Info("logged in", zap.String("username", username))
	return sess, nil
}

// LoginWithUser creates a session for a user already authenticated elsewhere
// (e.g. via SSO). The user must still exist in the credential table.
func (s *AuthService) LoginWithUser(ctx context.Context, username string) (*domain.Session, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.metrics.LoginAttempt(metrics.LoginUnknownUser)
		return nil, domain.ErrUsernameNotFound
	}
	sess, err := s.startSession(ctx, username)
	if err != nil {
		return nil, err
	}
	s.metrics.LoginAttempt(metrics.LoginSuccess)
	s.logger.Info("logged in via sso", zap.String("username", username))
	return sess, nil
}

func (s *AuthService) startSession(ctx context.Context, username string) (*domain.Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}
	sess := domain.NewSession(token, username, s.models.Default(), s.now(), s.ttl)
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Logout invalidates a session.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	sess, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return err
	}
	if sess == nil {
		return nil
	}
	username := sess.Username
	sess.LogOut()
	if err := s.sessions.Delete(ctx, token); err != nil {
		// Keep the token unusable even if the record survives.
		if uerr := s.sessions.Update(ctx, sess); uerr != nil {
			return errors.Join(err, uerr)
		}
		return err
	}
	s.logger.Info("logout", zap.String("username", username))
	return nil
}

// ValidateSession returns the live session for token.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*domain.Session, error) {
	sess, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if sess == nil || !sess.Authenticated {
		return nil, domain.ErrSessionNotFound
	}

	if sess.Expired(s.now()) {
		_ = s.sessions.Delete(ctx, token)
		return nil, domain.ErrSessionExpired
	}

	if _, ok := s.models.Lookup(sess.Model); !ok {
		sess.Model = s.models.Default()
	}
	return sess, nil
}

// RunSweeper deletes expired sessions every interval until ctx is done.
func (s *AuthService) RunSweeper(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := s.sessions.DeleteExpired(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("sweep expired sessions", zap.Error(err))
			}
		}
	}
}

// HashPassword returns a bcrypt hash suitable for the credential table.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func passwordMatches(stored, given string) bool {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return ConstantTimeCompare(stored, given)
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// ConstantTimeCompare performs a constant-time comparison of two strings.
func ConstantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
