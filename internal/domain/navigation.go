package domain

import (
	"strconv"
	"strings"
	"time"
)

// NewSession returns a logged-in session positioned on the first entry.
func NewSession(token, username, model string, now time.Time, ttl time.Duration) *Session {
	return &Session{
		Token:         token,
		Authenticated: true,
		Username:      username,
		Cursor:        0,
		Model:         model,
		CreatedAt:     now,
		ExpiresAt:     now.Add(ttl),
	}
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// LogOut clears the identity and rewinds the cursor.
func (s *Session) LogOut() {
	s.Authenticated = false
	s.Username = ""
	s.Cursor = 0
}

// Advance moves the cursor forward unless it already sits on the last of n
// entries.
func (s *Session) Advance(n int) {
	if s.Cursor < n-1 {
		s.Cursor++
	}
}

// Retreat moves the cursor back unless it is already on the first entry.
func (s *Session) Retreat() {
	if s.Cursor > 0 {
		s.Cursor--
	}
}

// Jump sets the cursor to the zero-based index in input. Input that is not an
// integer or falls outside [0, n-1] is ignored. It reports whether the cursor
// moved.
func (s *Session) Jump(input string, n int) bool {
	i, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || i < 0 || i >= n {
		return false
	}
	s.Cursor = i
	return true
}

// Clamp pulls the cursor back inside [0, n-1], or to 0 for an empty corpus.
func (s *Session) Clamp(n int) {
	switch {
	case n <= 0 || s.Cursor < 0:
		s.Cursor = 0
	case s.Cursor > n-1:
		s.Cursor = n - 1
	}
}
