// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"sync"
	"time"

	"paraeval/internal/domain"
)

// DB implements an in-memory database storage.
type DB struct {
	mu       sync.Mutex
	ledgers  map[domain.LedgerKey][]domain.ScoreRecord
	sessions map[string]domain.Session
	now      func() time.Time
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		ledgers:  make(map[domain.LedgerKey][]domain.ScoreRecord),
		sessions: make(map[string]domain.Session),
		now:      time.Now,
	}
}

// Ensure interfaces are met.
var _ domain.ScoreRepository = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

// --- ScoreRepository ---

// UpsertScore replaces any row with the same title, then appends rec.
func (db *DB) UpsertScore(ctx context.Context, key domain.LedgerKey, rec domain.ScoreRecord) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.ledgers[key] = domain.UpsertByTitle(db.ledgers[key], rec)
	return nil
}

// ListScores returns a copy of the ledger rows.
func (db *DB) ListScores(ctx context.Context, key domain.LedgerKey) ([]domain.ScoreRecord, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	rows := db.ledgers[key]
	out := make([]domain.ScoreRecord, len(rows))
	copy(out, rows)
	return out, nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create stores a new session.
func (r *SessionRepo) Create(ctx context.Context, s *domain.Session) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[s.Token] = *s
	return nil
}

// GetByToken returns a copy of the session, or nil when absent.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	s, ok := r.db.sessions[token]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// Update overwrites the stored session; unknown tokens report ErrSessionNotFound.
func (r *SessionRepo) Update(ctx context.Context, s *domain.Session) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.sessions[s.Token]; !ok {
		return domain.ErrSessionNotFound
	}
	r.db.sessions[s.Token] = *s
	return nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := r.db.now()
	for k, v := range r.db.sessions {
		if v.Expired(now) {
			delete(r.db.sessions, k)
		}
	}
	return nil
}
