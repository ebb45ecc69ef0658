package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret123", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, "secret123", hash)
	assert.True(t, VerifyPassword(hash, "secret123"))
	assert.False(t, VerifyPassword(hash, "secret124"))
}

func TestHashPasswordSaltsEachCall(t *testing.T) {
	a, err := HashPassword("secret123", bcrypt.MinCost)
	require.NoError(t, err)
	b, err := HashPassword("secret123", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestTokenIssuerRoundTrip(t *testing.T) {
	ti := NewTokenIssuer("test-secret", time.Hour)

	tok, err := ti.Issue(42)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.Exp, 5*time.Second)

	uid, err := ti.Verify(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), uid)
}

func TestTokenIssuerDefaultsToOneHour(t *testing.T) {
	assert.Equal(t, time.Hour, NewTokenIssuer("s", 0).TTL())
}

func TestTokenIssuerRejectsExpired(t *testing.T) {
	ti := NewTokenIssuer("test-secret", time.Hour)
	ti.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, err := ti.Issue(7)
	require.NoError(t, err)

	ti.now = time.Now
	_, err = ti.Verify(tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuerRejectsWrongSecret(t *testing.T) {
	tok, err := NewTokenIssuer("one", time.Hour).Issue(7)
	require.NoError(t, err)

	_, err = NewTokenIssuer("two", time.Hour).Verify(tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuerRejectsNoneAlgorithm(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "7",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenIssuer("test-secret", time.Hour).Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuerRejectsMissingExpiry(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "7"}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = NewTokenIssuer("test-secret", time.Hour).Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuerRejectsBadSubject(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "not-a-number",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = NewTokenIssuer("test-secret", time.Hour).Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewSessionToken(t *testing.T) {
	a, err := NewSessionToken()
	require.NoError(t, err)
	b, err := NewSessionToken()
	require.NoError(t, err)

	assert.Len(t, a, SessionTokenBytes*2)
	assert.NotEqual(t, a, b)
	assert.Empty(t, strings.Trim(a, "0123456789abcdef"))
}

func TestHashPasswordRejectsOverlongInput(t *testing.T) {
	long := strings.Repeat("a", MaxPasswordBytes+1)

	_, err := HashPassword(long, bcrypt.MinCost)
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	hash, err := HashPassword(long[:MaxPasswordBytes], bcrypt.MinCost)
	require.NoError(t, err)
	assert.False(t, VerifyPassword(hash, long))
}
