package postgres

import (
	"context"
	"database/sql"
	"errors"

	"paraeval/internal/domain"
)

// SessionRepo implements session repository operations on DB.
type SessionRepo struct {
	db *DB
}

var _ domain.SessionRepository = (*SessionRepo)(nil)

// NewSessionRepo wraps a DB as a SessionRepository.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.sql.ExecContext(ctx,
		"INSERT INTO sessions (token, username, entry_index, model, expires_at, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		s.Token, s.Username, s.Cursor, s.Model, s.ExpiresAt, s.CreatedAt,
	)
	return err
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	var s domain.Session
	err := r.db.sql.QueryRowContext(ctx,
		"SELECT token, username, entry_index, model, expires_at, created_at FROM sessions WHERE token = $1",
		token,
	).Scan(&s.Token, &s.Username, &s.Cursor, &s.Model, &s.ExpiresAt, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.Authenticated = s.Username != ""
	return &s, nil
}

// Update stores the identity, cursor and selected model of an existing session.
func (r *SessionRepo) Update(ctx context.Context, s *domain.Session) error {
	res, err := r.db.sql.ExecContext(ctx,
		"UPDATE sessions SET username = $2, entry_index = $3, model = $4 WHERE token = $1",
		s.Token, s.Username, s.Cursor, s.Model,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// Delete deletes a session by token.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	_, err := r.db.sql.ExecContext(ctx, "DELETE FROM sessions WHERE token = $1", token)
	return err
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	_, err := r.db.sql.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < $1", r.db.now())
	return err
}
