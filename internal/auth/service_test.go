package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/demus23/myus-delivery-app-sub002/internal/shared"
)

type stubRepo struct {
	users map[string]*User
}

func (r *stubRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	if u, ok := r.users[email]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func (r *stubRepo) FindByID(ctx context.Context, id int64) (*User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, shared.ErrNotFound
}

func testService(t *testing.T) (*Service, *User) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &User{
		ID:           7,
		Email:        "amal@example.com",
		Name:         "Amal",
		PasswordHash: string(hash),
		IsAdmin:      true,
		IsActive:     true,
		SuiteCode:    "STE-0007",
	}
	repo := &stubRepo{users: map[string]*User{user.Email: user}}
	return NewService(repo, "test-jwt-secret", time.Hour), user
}

func TestAuthenticateIssuesParsableToken(t *testing.T) {
	svc, user := testService(t)

	token, got, err := svc.Authenticate(context.Background(), user.Email, "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	identity, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, user.Email, identity.Email)
	assert.True(t, identity.IsAdmin)
}

func TestAuthenticateRejections(t *testing.T) {
	svc, user := testService(t)
	ctx := context.Background()

	_, _, err := svc.Authenticate(ctx, user.Email, "wrong-password")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, _, err = svc.Authenticate(ctx, "nobody@example.com", "correct-horse")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	user.IsActive = false
	_, _, err = svc.Authenticate(ctx, user.Email, "correct-horse")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	svc, user := testService(t)
	token, _, err := svc.Authenticate(context.Background(), user.Email, "correct-horse")
	require.NoError(t, err)

	other := NewService(&stubRepo{}, "different-secret", time.Hour)
	_, err = other.ParseToken(token)
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}
