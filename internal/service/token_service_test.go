package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tokens, err := NewTokenService("s3cret", 0)
	require.NoError(t, err)

	token, err := tokens.Issue("user-1")
	require.NoError(t, err)

	id, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)
}

func TestTokenExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	tokens, err := newTokenService("s3cret", time.Hour, clock)
	require.NoError(t, err)
	token, err := tokens.Issue("user-1")
	require.NoError(t, err)

	now = now.Add(59 * time.Minute)
	_, err = tokens.Verify(token)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = tokens.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsForeignTokens(t *testing.T) {
	tokens, err := NewTokenService("s3cret", time.Hour)
	require.NoError(t, err)
	other, err := NewTokenService("different", time.Hour)
	require.NoError(t, err)

	foreign, err := other.Issue("user-1")
	require.NoError(t, err)
	_, err = tokens.Verify(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	valid, err := tokens.Issue("user-1")
	require.NoError(t, err)
	_, err = tokens.Verify(valid + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tokens.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, tokenClaims{
		User: tokenUser{ID: "user-1"},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tokens.Verify(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenServiceRequiresSecret(t *testing.T) {
	_, err := NewTokenService("", time.Hour)
	require.Error(t, err)
}
