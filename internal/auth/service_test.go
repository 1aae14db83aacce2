package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gescom-app/gescom/internal/shared"
	"github.com/gescom-app/gescom/internal/users"
	_ "github.com/gescom-app/gescom/testing"
)

type memoryUsers struct {
	byEmail map[string]users.User
}

func (m *memoryUsers) List(ctx context.Context) ([]users.User, error) { return nil, nil }

func (m *memoryUsers) Get(ctx context.Context, id int64) (users.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return users.User{}, shared.ErrNotFound
}

func (m *memoryUsers) FindByEmail(ctx context.Context, email string) (users.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return users.User{}, shared.ErrNotFound
	}
	return u, nil
}

func (m *memoryUsers) ResolveAgent(ctx context.Context, nameOrEmail string) (users.User, error) {
	return m.FindByEmail(ctx, nameOrEmail)
}

func seededRepo(t *testing.T, password string, active bool) *memoryUsers {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	return &memoryUsers{byEmail: map[string]users.User{
		"leila@gescom.tn": {
			ID:           3,
			FullName:     "Leila Ben Salah",
			Email:        "leila@gescom.tn",
			PasswordHash: hash,
			IsActive:     active,
		},
	}}
}

func TestAuthenticateSuccess(t *testing.T) {
	svc := NewService(seededRepo(t, "secret123", true))

	user, err := svc.Authenticate(context.Background(), "leila@gescom.tn", "secret123")
	require.NoError(t, err)
	require.Equal(t, int64(3), user.ID)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc := NewService(seededRepo(t, "secret123", true))

	_, err := svc.Authenticate(context.Background(), "leila@gescom.tn", "nope")
	require.True(t, errors.Is(err, shared.ErrInvalidCredentials))
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	svc := NewService(seededRepo(t, "secret123", true))

	_, err := svc.Authenticate(context.Background(), "ghost@gescom.tn", "secret123")
	require.True(t, errors.Is(err, shared.ErrInvalidCredentials))
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	svc := NewService(seededRepo(t, "secret123", false))

	_, err := svc.Authenticate(context.Background(), "leila@gescom.tn", "secret123")
	require.True(t, errors.Is(err, shared.ErrInvalidCredentials))
}
