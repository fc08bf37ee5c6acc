package csvstore

import (
	"context"
	"fmt"
	"sort"

	"paraeval/internal/domain"
)

// UserStore is the credential table, loaded once and never written.
type UserStore struct {
	users map[string]domain.User
}

var _ domain.UserRepository = (*UserStore)(nil)

// LoadUsers reads a CSV with username and password columns. The first row for
// a username wins.
func LoadUsers(path string) (*UserStore, error) {
	t, err := readTable(path, "username", "password")
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	s := &UserStore{users: make(map[string]domain.User, len(t.rows))}
	for i := range t.rows {
		name := t.get(i, "username")
		if name == "" {
			continue
		}
		if _, seen := s.users[name]; seen {
			continue
		}
		s.users[name] = domain.User{Username: name, Password: t.get(i, "password")}
	}
	return s, nil
}

// GetByUsername returns the user or nil when the name is unknown.
func (s *UserStore) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := s.users[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// Count returns the number of distinct users.
func (s *UserStore) Count(_ context.Context) (int, error) {
	return len(s.users), nil
}

// Usernames returns every username in sorted order.
func (s *UserStore) Usernames() []string {
	out := make([]string, 0, len(s.users))
	for name := range s.users {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
