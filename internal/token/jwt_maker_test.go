package token

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJWTMaker(t *testing.T) {
	maker, err := NewJWTMaker(strings.Repeat("x", 32))
	require.NoError(t, err)

	tokenString, payload, err := maker.CreateToken("u1", time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)
	require.Equal(t, "u1", payload.Subject)

	verified, err := maker.VerifyToken(tokenString)
	require.NoError(t, err)
	require.Equal(t, "u1", verified.Subject)
	require.Equal(t, payload.ID, verified.ID)
}

func TestJWTMakerShortSecret(t *testing.T) {
	_, err := NewJWTMaker("too-short")
	require.Error(t, err)
}

func TestJWTMakerExpiredToken(t *testing.T) {
	maker, err := NewJWTMaker(strings.Repeat("x", 32))
	require.NoError(t, err)

	tokenString, _, err := maker.CreateToken("u1", -time.Minute)
	require.NoError(t, err)

	_, err = maker.VerifyToken(tokenString)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTMakerInvalidToken(t *testing.T) {
	maker, err := NewJWTMaker(strings.Repeat("x", 32))
	require.NoError(t, err)

	_, err = maker.VerifyToken("not.a.token")
	require.ErrorIs(t, err, ErrInvalidToken)
}
