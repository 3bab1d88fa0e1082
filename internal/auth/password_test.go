package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_HashAndCompare(t *testing.T) {
	t.Parallel()

	h := NewHasher(bcrypt.MinCost)
	ctx := context.Background()

	hash, err := h.Hash(ctx, "1234")
	require.NoError(t, err)
	assert.NotEqual(t, "1234", hash)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	assert.NoError(t, h.Compare(ctx, hash, "1234"))
	assert.ErrorIs(t, h.Compare(ctx, hash, "12345"), ErrMismatchedPassword)
}

func TestHasher_SaltedHashesDiffer(t *testing.T) {
	t.Parallel()

	h := NewHasher(bcrypt.MinCost)

	a, err := h.Hash(context.Background(), "same")
	require.NoError(t, err)
	b, err := h.Hash(context.Background(), "same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHasher_OutOfRangeCostFallsBack(t *testing.T) {
	t.Parallel()

	assert.Equal(t, bcrypt.DefaultCost, NewHasher(1).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(99).cost)
}

func TestHasher_CompareMalformedHash(t *testing.T) {
	t.Parallel()

	err := NewHasher(bcrypt.MinCost).Compare(context.Background(), "not-a-hash", "pw")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMismatchedPassword)
}

func TestHasher_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHasher(bcrypt.MinCost).Hash(ctx, "pw")
	assert.ErrorIs(t, err, context.Canceled)
}
