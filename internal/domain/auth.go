// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"time"
)

// User is a reviewer allowed to score paraphrases. Password holds either a
// plaintext secret or a bcrypt hash, exactly as read from the credential table.
type User struct {
	Username string
	Password string
}

// Session is the server-side state of one logged-in reviewer.
type Session struct {
	Token         string
	Authenticated bool
	Username      string
	Cursor        int
	Model         string
	ExpiresAt     time.Time
	CreatedAt     time.Time
}

// UserRepository is the read-only port for the credential table.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	Count(ctx context.Context) (int, error)
}

// SessionRepository defines the port for session persistence operations.
type SessionRepository interface {
	Create(ctx context.Context, s *Session) error
	GetByToken(ctx context.Context, token string) (*Session, error)
	Update(ctx context.Context, s *Session) error
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) error
}
