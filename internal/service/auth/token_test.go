package auth

import (
	"testing"
	"time"

	"MarketDash/internal/domain"
	"MarketDash/internal/domain/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestIssueAndParse(t *testing.T) {
	m := NewTokenManager(secret, "marketdash", time.Hour)
	token, exp, err := m.Issue(&models.User{ID: 42, Username: "asha"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "asha", claims.Username)
}

func TestParseRejects(t *testing.T) {
	m := NewTokenManager(secret, "marketdash", time.Hour)
	good, _, err := m.Issue(&models.User{ID: 1, Username: "a"})
	require.NoError(t, err)

	expired := NewTokenManager(secret, "marketdash", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Issue(&models.User{ID: 1, Username: "a"})
	require.NoError(t, err)

	otherIssuer, _, err := NewTokenManager(secret, "someone-else", time.Hour).Issue(&models.User{ID: 1})
	require.NoError(t, err)

	wrongKey, _, err := NewTokenManager("another-secret-of-enough-length", "marketdash", time.Hour).Issue(&models.User{ID: 1})
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "1", Issuer: "marketdash"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	cases := map[string]string{
		"garbage":   "not-a-token",
		"tampered":  good + "x",
		"expired":   old,
		"issuer":    otherIssuer,
		"wrong key": wrongKey,
		"alg none":  none,
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := m.Parse(tok)
			assert.ErrorIs(t, err, domain.ErrInvalidToken)
		})
	}
}
