package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"potion_service/internal/auth"
	"potion_service/internal/storage"
)

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Compare(ctx context.Context, hash, password string) error
}

type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

type AuthService interface {
	Signup(ctx context.Context, email, password string) (string, error)
	Signin(ctx context.Context, email, password string) (string, error)
}

type Auth struct {
	users  storage.UserStore
	hasher PasswordHasher
	tokens TokenIssuer
	log    *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuth(users storage.UserStore, hasher PasswordHasher, tokens TokenIssuer, log *slog.Logger) *Auth {
	return &Auth{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		log:    log,
	}
}

// Signup stores a new user and returns a token for it. A taken email yields
// ErrDuplicateEmail; the unique constraint on users.email decides races.
func (s *Auth) Signup(ctx context.Context, email, password string) (string, error) {
	const op = "service.Signup"

	passwordHash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.users.CreateUser(ctx, email, passwordHash)
	if err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			return "", ErrDuplicateEmail
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.tokens.Issue(id)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user signed up", slog.String("op", op), slog.Int64("user_id", id))

	return token, nil
}

// Signin returns ErrInvalidCredentials for an unknown email and for a wrong
// password alike.
func (s *Auth) Signin(ctx context.Context, email, password string) (string, error) {
	const op = "service.Signin"

	cred, err := s.users.GetCredentialsByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return "", fmt.Errorf("%s: %w", op, err)
		}

		// keep timing close to the known-email path
		_ = s.hasher.Compare(ctx, s.placeholderHash(ctx), password)

		return "", ErrInvalidCredentials
	}

	if err := s.hasher.Compare(ctx, cred.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrMismatchedPassword) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.tokens.Issue(cred.UserID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return token, nil
}

func (s *Auth) placeholderHash(ctx context.Context) string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(context.WithoutCancel(ctx), "placeholder-password")
		if err != nil {
			s.log.Warn("failed to prepare placeholder hash", slog.Any("error", err))
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}
