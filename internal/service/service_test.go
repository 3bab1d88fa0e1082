package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"potion_service/internal/auth"
	"potion_service/internal/models"
	"potion_service/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	svc    *Auth
	store  *storage.MemoryStorage
	tokens *auth.TokenManager
}

func newFixture(t *testing.T, log *slog.Logger) fixture {
	t.Helper()

	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	tokens, err := auth.NewTokenManager("test-secret", 0)
	require.NoError(t, err)

	store := storage.NewMemoryStorage()
	return fixture{
		svc:    NewAuth(store, auth.NewHasher(bcrypt.MinCost), tokens, log),
		store:  store,
		tokens: tokens,
	}
}

func TestSignup_IssuesTokenForNewUser(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	token, err := f.svc.Signup(ctx, "jon@user.com", "1234")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := f.tokens.Verify(token)
	require.NoError(t, err)

	cred, err := f.store.GetCredentialsByEmail(ctx, "jon@user.com")
	require.NoError(t, err)
	assert.Equal(t, cred.UserID, userID)
	assert.NotEqual(t, "1234", cred.PasswordHash)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Signup(ctx, "jon@user.com", "1234")
	require.NoError(t, err)

	for _, pw := range []string{"1234", "other", ""} {
		_, err = f.svc.Signup(ctx, "jon@user.com", pw)
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	}
}

func TestSignin(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	signupToken, err := f.svc.Signup(ctx, "jon@user.com", "1234")
	require.NoError(t, err)
	createdID, err := f.tokens.Verify(signupToken)
	require.NoError(t, err)

	t.Run("correct credentials", func(t *testing.T) {
		token, err := f.svc.Signin(ctx, "jon@user.com", "1234")
		require.NoError(t, err)

		id, err := f.tokens.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, createdID, id)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.svc.Signin(ctx, "jon@user.com", "4321")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := f.svc.Signin(ctx, "ghost@user.com", "1234")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestSignup_NeverLogsSecrets(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	f := newFixture(t, log)
	ctx := context.Background()

	_, err := f.svc.Signup(ctx, "jon@user.com", "hunter2-secret")
	require.NoError(t, err)
	_, _ = f.svc.Signin(ctx, "jon@user.com", "wrong-secret")

	cred, err := f.store.GetCredentialsByEmail(ctx, "jon@user.com")
	require.NoError(t, err)

	out := buf.String()
	assert.NotContains(t, out, "hunter2-secret")
	assert.NotContains(t, out, "wrong-secret")
	assert.NotContains(t, out, cred.PasswordHash)
}

type brokenUsers struct{ err error }

func (b brokenUsers) CreateUser(context.Context, string, string) (int64, error) { return 0, b.err }

func (b brokenUsers) GetUserByID(context.Context, int64) (models.User, error) {
	return models.User{}, b.err
}

func (b brokenUsers) GetCredentialsByEmail(context.Context, string) (models.Credentials, error) {
	return models.Credentials{}, b.err
}

func TestStorageErrorsPropagate(t *testing.T) {
	dbErr := errors.New("connection refused")
	tokens, err := auth.NewTokenManager("k", 0)
	require.NoError(t, err)

	svc := NewAuth(brokenUsers{err: dbErr}, auth.NewHasher(bcrypt.MinCost), tokens, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err = svc.Signup(context.Background(), "a@b.c", "pw")
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrDuplicateEmail)

	_, err = svc.Signin(context.Background(), "a@b.c", "pw")
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}
