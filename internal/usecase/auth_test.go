package usecase

import (
	"context"
	"strings"
	"testing"

	"MarketDash/internal/domain"
	"MarketDash/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegisterAndLogin(t *testing.T) {
	users := newFakeUserStore()
	uc := NewAuthUseCase(users, fakeTokens{}, bcrypt.MinCost, nil)
	ctx := context.Background()

	u, err := uc.Register(ctx, models.RegisterRequest{Username: "asha", Email: "asha@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "s3cret-pass", u.PasswordHash)

	tok, err := uc.Login(ctx, models.LoginRequest{Username: "asha", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, "token-asha", tok.AccessToken)
	assert.Equal(t, "bearer", tok.TokenType)
	assert.Equal(t, "asha", tok.User.Username)

	me, err := uc.Me(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", me.Email)
}

func TestRegisterDuplicate(t *testing.T) {
	uc := NewAuthUseCase(newFakeUserStore(), fakeTokens{}, bcrypt.MinCost, nil)
	req := models.RegisterRequest{Username: "asha", Email: "asha@example.com", Password: "s3cret-pass"}
	_, err := uc.Register(context.Background(), req)
	require.NoError(t, err)

	req.Username = "other"
	_, err = uc.Register(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestLoginFailures(t *testing.T) {
	users := newFakeUserStore()
	uc := NewAuthUseCase(users, fakeTokens{}, bcrypt.MinCost, nil)
	ctx := context.Background()
	_, err := uc.Register(ctx, models.RegisterRequest{Username: "asha", Email: "a@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	_, err = uc.Login(ctx, models.LoginRequest{Username: "asha", Password: "wrong-pass"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = uc.Login(ctx, models.LoginRequest{Username: "nobody", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	users.byName["asha"].IsActive = false
	_, err = uc.Login(ctx, models.LoginRequest{Username: "asha", Password: "s3cret-pass"})
	assert.ErrorIs(t, err, domain.ErrInactiveUser)

	_, err = uc.Me(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrInactiveUser)
	_, err = uc.Me(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegisterRejectsPasswordOverBcryptLimit(t *testing.T) {
	users := newFakeUserStore()
	uc := NewAuthUseCase(users, fakeTokens{}, bcrypt.MinCost, nil)

	// 40 runes, 80 bytes
	pw := strings.Repeat("é", 40)
	_, err := uc.Register(context.Background(), models.RegisterRequest{Username: "asha", Email: "a@example.com", Password: pw})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, users.byName)
}
