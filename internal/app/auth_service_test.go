package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"paraeval/internal/app"
	"paraeval/internal/domain"
	"paraeval/internal/metrics"
)

func usersWith(users ...domain.User) *mockUserRepo {
	return &mockUserRepo{
		getByUsernameFn: func(_ context.Context, username string) (*domain.User, error) {
			for _, u := range users {
				if u.Username == username {
					return &u, nil
				}
			}
			return nil, nil
		},
	}
}

func newAuth(users domain.UserRepository, sessions domain.SessionRepository) *app.AuthService {
	return app.NewAuthService(users, sessions, testModels, 24*time.Hour, zap.NewNop(), nil)
}

func TestAuthenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	users := usersWith(
		domain.User{Username: "alice", Password: "1234"},
		domain.User{Username: "bob", Password: string(hash)},
	)
	svc := newAuth(users, &mockSessionRepo{})

	tests := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{"plaintext match", "alice", "1234", nil},
		{"plaintext mismatch", "alice", "12345", domain.ErrIncorrectPassword},
		{"bcrypt match", "bob", "s3cret", nil},
		{"bcrypt mismatch", "bob", string(hash), domain.ErrIncorrectPassword},
		{"unknown user", "mallory", "1234", domain.ErrUsernameNotFound},
		{"empty username", "", "", domain.ErrUsernameNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Authenticate(context.Background(), tt.username, tt.password)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	var created *domain.Session
	sessions := &mockSessionRepo{
		createFn: func(_ context.Context, s *domain.Session) error {
			created = s
			return nil
		},
	}
	m := metrics.New()
	core, logs := observer.New(zap.InfoLevel)
	svc := app.NewAuthService(usersWith(domain.User{Username: "alice", Password: "1234"}), sessions, testModels, time.Hour, zap.New(core), m)

	before := time.Now()
	sess, err := svc.Login(context.Background(), "alice", "1234")
	require.NoError(t, err)
	require.Same(t, created, sess)

	assert.True(t, sess.Authenticated)
	assert.Equal(t, "alice", sess.Username)
	assert.Equal(t, 0, sess.Cursor)
	assert.Equal(t, "gemini 1.5 pro", sess.Model)
	assert.NotEmpty(t, sess.Token)
	assert.WithinDuration(t, before.Add(time.Hour), sess.ExpiresAt, 5*time.Second)
	assert.Equal(t, 1, logs.FilterMessage("logged in").Len())
}

func TestAuthService_Login_TokensAreUnique(t *testing.T) {
	svc := newAuth(usersWith(domain.User{Username: "alice", Password: "1234"}), &mockSessionRepo{})
	seen := map[string]bool{}
	for range 20 {
		sess, err := svc.Login(context.Background(), "alice", "1234")
		require.NoError(t, err)
		assert.False(t, seen[sess.Token], "duplicate token")
		seen[sess.Token] = true
	}
}

func TestAuthService_Login_Rejected(t *testing.T) {
	createCalled := false
	sessions := &mockSessionRepo{
		createFn: func(context.Context, *domain.Session) error {
			createCalled = true
			return nil
		},
	}
	svc := newAuth(usersWith(domain.User{Username: "alice", Password: "1234"}), sessions)

	_, err := svc.Login(context.Background(), "alice", "nope")
	assert.ErrorIs(t, err, domain.ErrIncorrectPassword)
	_, err = svc.Login(context.Background(), "bob", "1234")
	assert.ErrorIs(t, err, domain.ErrUsernameNotFound)
	assert.False(t, createCalled, "no session may be created on failed login")
}

func TestAuthService_Login_RepoError(t *testing.T) {
	boom := errors.New("disk gone")
	users := &mockUserRepo{
		getByUsernameFn: func(context.Context, string) (*domain.User, error) { return nil, boom },
	}
	svc := newAuth(users, &mockSessionRepo{})
	_, err := svc.Login(context.Background(), "alice", "1234")
	assert.ErrorIs(t, err, boom)
}

func TestAuthService_LoginWithUser(t *testing.T) {
	svc := newAuth(usersWith(domain.User{Username: "alice@example.com", Password: "x"}), &mockSessionRepo{})

	sess, err := svc.LoginWithUser(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", sess.Username)

	_, err = svc.LoginWithUser(context.Background(), "eve@example.com")
	assert.ErrorIs(t, err, domain.ErrUsernameNotFound)
}

func TestAuthService_Logout(t *testing.T) {
	var deleted []string
	sessions := &mockSessionRepo{
		getByTokenFn: func(_ context.Context, token string) (*domain.Session, error) {
			if token != "tok" {
				return nil, nil
			}
			return &domain.Session{Token: "tok", Authenticated: true, Username: "alice"}, nil
		},
		deleteFn: func(_ context.Context, token string) error {
			deleted = append(deleted, token)
			return nil
		},
	}
	svc := newAuth(&mockUserRepo{}, sessions)
	require.NoError(t, svc.Logout(context.Background(), "tok"))
	require.NoError(t, svc.Logout(context.Background(), "unknown"))
	assert.Equal(t, []string{"tok"}, deleted)
}

func TestAuthService_Logout_DeleteFails(t *testing.T) {
	boom := errors.New("connection reset")
	var updated *domain.Session
	sessions := &mockSessionRepo{
		getByTokenFn: func(context.Context, string) (*domain.Session, error) {
			return &domain.Session{Token: "tok", Authenticated: true, Username: "alice", Cursor: 4}, nil
		},
		deleteFn: func(context.Context, string) error { return boom },
		updateFn: func(_ context.Context, s *domain.Session) error {
			updated = s
			return nil
		},
	}
	svc := newAuth(&mockUserRepo{}, sessions)

	err := svc.Logout(context.Background(), "tok")
	assert.ErrorIs(t, err, boom)
	require.NotNil(t, updated)
	assert.False(t, updated.Authenticated)
	assert.Empty(t, updated.Username)
	assert.Zero(t, updated.Cursor)
}

func TestAuthService_ValidateSession(t *testing.T) {
	now := time.Now()
	stored := map[string]*domain.Session{
		"live":    {Token: "live", Authenticated: true, Username: "alice", Model: "gpt-4o", ExpiresAt: now.Add(time.Hour)},
		"expired": {Token: "expired", Authenticated: true, Username: "alice", Model: "gpt-4o", ExpiresAt: now.Add(-time.Minute)},
		"stale":   {Token: "stale", Authenticated: true, Username: "alice", Model: "retired", ExpiresAt: now.Add(time.Hour)},
		"out":     {Token: "out", Username: "", Model: "gpt-4o", ExpiresAt: now.Add(time.Hour)},
	}
	var deleted []string
	sessions := &mockSessionRepo{
		getByTokenFn: func(_ context.Context, token string) (*domain.Session, error) {
			return stored[token], nil
		},
		deleteFn: func(_ context.Context, token string) error {
			deleted = append(deleted, token)
			return nil
		},
	}
	svc := newAuth(&mockUserRepo{}, sessions)

	sess, err := svc.ValidateSession(context.Background(), "live")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", sess.Model)

	_, err = svc.ValidateSession(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = svc.ValidateSession(context.Background(), "expired")
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
	assert.Equal(t, []string{"expired"}, deleted)

	sess, err = svc.ValidateSession(context.Background(), "stale")
	require.NoError(t, err)
	assert.Equal(t, "gemini 1.5 pro", sess.Model, "unknown model falls back to the default")

	_, err = svc.ValidateSession(context.Background(), "out")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound, "logged-out sessions are rejected")
}

func TestAuthService_RunSweeper(t *testing.T) {
	calls := make(chan struct{}, 1)
	sessions := &mockSessionRepo{
		deleteExpiredFn: func(context.Context) error {
			select {
			case calls <- struct{}{}:
			default:
			}
			return nil
		},
	}
	svc := newAuth(&mockUserRepo{}, sessions)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.RunSweeper(ctx, 5*time.Millisecond)
		close(done)
	}()

	select {
	case <-calls:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper never ran")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestHashPassword(t *testing.T) {
	hash, err := app.HashPassword("pw")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("pw")))

	svc := newAuth(usersWith(domain.User{Username: "u", Password: hash}), &mockSessionRepo{})
	assert.NoError(t, svc.Authenticate(context.Background(), "u", "pw"))
}

func TestConstantTimeCompare(t *testing.T) {
	assert.True(t, app.ConstantTimeCompare("abc", "abc"))
	assert.False(t, app.ConstantTimeCompare("abc", "abd"))
	assert.False(t, app.ConstantTimeCompare("abc", "ab"))
}
