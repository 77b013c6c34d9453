package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flick-business/flick-business/internal/shared"
)

type fakeRepo struct {
	nextID int64
	users  map[int64]User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{nextID: 1, users: map[int64]User{}}
}

func (f *fakeRepo) Create(_ context.Context, u User) (int64, error) {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return 0, fmt.Errorf("%w: email already registered", shared.ErrConflict)
		}
	}
	u.ID = f.nextID
	f.nextID++
	f.users[u.ID] = u
	return u.ID, nil
}

func (f *fakeRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range f.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: user", shared.ErrNotFound)
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %d", shared.ErrNotFound, id)
	}
	out := u
	return &out, nil
}

func (f *fakeRepo) Update(_ context.Context, u User) error {
	if _, ok := f.users[u.ID]; !ok {
		return fmt.Errorf("%w: user %d", shared.ErrNotFound, u.ID)
	}
	f.users[u.ID] = u
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.users[id]; !ok {
		return fmt.Errorf("%w: user %d", shared.ErrNotFound, id)
	}
	delete(f.users, id)
	return nil
}

var _ Repository = (*fakeRepo)(nil)

func newTestService() *Service {
	return NewService(newFakeRepo(), NewTokenIssuer("test-secret-do-not-use", time.Hour))
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterRequest{
		Name:     "Maria Silva",
		Email:    "maria@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	require.NotEmpty(t, registered.Token)
	require.NotEqual(t, "s3cret-pass", registered.User.PasswordHash, "password must be hashed")

	t.Run("login with correct password", func(t *testing.T) {
		resp, err := svc.Login(ctx, LoginRequest{Email: "maria@example.com", Password: "s3cret-pass"})
		require.NoError(t, err)
		require.NotEmpty(t, resp.Token)
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginRequest{Email: "maria@example.com", Password: "wrong-pass"})
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email is unauthorized, not not-found", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "whatever1"})
		require.ErrorIs(t, err, shared.ErrUnauthorized)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterRequest{
			Name:     "Maria Clone",
			Email:    "maria@example.com",
			Password: "another-pass",
		})
		require.ErrorIs(t, err, shared.ErrConflict)
	})

	t.Run("short password is invalid", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterRequest{
			Name:     "Shorty",
			Email:    "short@example.com",
			Password: "abc",
		})
		require.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret-do-not-use", time.Hour)
	user := &User{ID: 42, Email: "maria@example.com"}

	token, err := issuer.Issue(user)
	require.NoError(t, err)

	identity, err := issuer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, int64(42), identity.UserID)
	require.Equal(t, "maria@example.com", identity.Email)

	t.Run("tampered token rejected", func(t *testing.T) {
		_, err := issuer.Verify(token + "x")
		require.ErrorIs(t, err, shared.ErrUnauthorized)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		expired := NewTokenIssuer("test-secret-do-not-use", -time.Minute)
		tok, err := expired.Issue(user)
		require.NoError(t, err)
		_, err = issuer.Verify(tok)
		require.ErrorIs(t, err, shared.ErrUnauthorized)
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		other := NewTokenIssuer("completely-different", time.Hour)
		_, err := other.Verify(token)
		require.ErrorIs(t, err, shared.ErrUnauthorized)
	})
}

func TestUpdateProfile(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterRequest{
		Name:     "Joao Prado",
		Email:    "joao@example.com",
		Password: "original-pass",
	})
	require.NoError(t, err)

	newPass := "rotated-pass"
	updated, err := svc.UpdateProfile(ctx, registered.User.ID, UpdateProfileRequest{
		Name:     "Joao P. Prado",
		Email:    "joao@example.com",
		Password: &newPass,
	})
	require.NoError(t, err)
	require.Equal(t, "Joao P. Prado", updated.Name)

	_, err = svc.Login(ctx, LoginRequest{Email: "joao@example.com", Password: "rotated-pass"})
	require.NoError(t, err)
	_, err = svc.Login(ctx, LoginRequest{Email: "joao@example.com", Password: "original-pass"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
