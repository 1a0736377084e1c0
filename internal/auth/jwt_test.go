package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	tok, err := m.CreateAccessToken(Identity{UserID: "user-a", Email: "a@example.com", Role: "PLAYER"})
	require.NoError(t, err)

	id, err := m.ParseValidate(tok)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: "user-a", Email: "a@example.com", Role: "PLAYER"}, id)
}

func TestParseValidateRejects(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	other := NewTokenManager("other-secret", time.Hour)

	foreign, err := other.CreateAccessToken(Identity{UserID: "user-a"})
	require.NoError(t, err)

	_, err = m.ParseValidate(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.ParseValidate("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = m.ParseValidate("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseValidateExpired(t *testing.T) {
	m := NewTokenManager("secret", time.Minute)
	issued := time.Date(2025, 11, 5, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }

	tok, err := m.CreateAccessToken(Identity{UserID: "user-a"})
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = m.ParseValidate(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseValidateRequiresExpiry(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Sub: "user-a"})
	s, err := tok.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewTokenManager("secret", time.Hour).ParseValidate(s)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCreateRequiresUser(t *testing.T) {
	_, err := NewTokenManager("secret", time.Hour).CreateAccessToken(Identity{})
	assert.Error(t, err)
}
