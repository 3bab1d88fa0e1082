package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, secret string, ttl time.Duration) *TokenManager {
	t.Helper()
	m, err := NewTokenManager(secret, ttl)
	require.NoError(t, err)
	return m
}

func TestIssueAndVerify_Success(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, "super-secret", 0)

	tok, err := m.Issue(42)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	got, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got)
}

func TestIssue_FreshTokens(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, "super-secret", 0)

	first, err := m.Issue(7)
	require.NoError(t, err)
	second, err := m.Issue(7)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestIssue_RejectsNonPositiveID(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, "super-secret", 0)

	_, err := m.Issue(0)
	assert.Error(t, err)
}

func TestVerify_DistinctUsers(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, "super-secret", 0)

	for id := int64(1); id <= 50; id++ {
		tok, err := m.Issue(id)
		require.NoError(t, err)

		got, err := m.Verify(tok)
		require.NoError(t, err)
		require.Equal(t, id, got)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := newTestManager(t, "right-secret", 0).Issue(1)
	require.NoError(t, err)

	_, err = newTestManager(t, "wrong-secret", 0).Verify(tok)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestVerify_TamperedToken(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, "super-secret", 0)
	tok, err := m.Issue(3)
	require.NoError(t, err)

	for i := 0; i < len(tok); i++ {
		b := []byte(tok)
		if b[i] == 'A' {
			b[i] = 'B'
		} else {
			b[i] = 'A'
		}

		_, err := m.Verify(string(b))
		require.ErrorIs(t, err, ErrInvalidToken, "tampered index %d", i)
	}
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, "k", 0)

	for _, tok := range []string{"", "not.a.jwt", "abc", "a.b.c.d"} {
		_, err := m.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, tok)
	}
}

func TestVerify_MissingUserID(t *testing.T) {
	t.Parallel()

	secret := "k"
	claims := jwt.RegisteredClaims{IssuedAt: jwt.NewNumericDate(time.Now())}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = newTestManager(t, secret, 0).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_MissingIssuedAt(t *testing.T) {
	t.Parallel()

	secret := "k"
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: 9}).SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = newTestManager(t, secret, 0).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	secret := "k"
	claims := &Claims{
		UserID:           9,
		RegisteredClaims: jwt.RegisteredClaims{IssuedAt: jwt.NewNumericDate(time.Now())},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = newTestManager(t, secret, 0).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, "k", time.Minute)
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }

	tok, err := m.Issue(5)
	require.NoError(t, err)

	got, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got)

	m.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = m.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenManager_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewTokenManager("", 0)
	assert.Error(t, err)

	_, err = NewTokenManager("k", -time.Second)
	assert.Error(t, err)
}
