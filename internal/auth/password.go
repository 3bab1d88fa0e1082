package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var ErrMismatchedPassword = errors.New("password does not match")

// Hasher derives and checks bcrypt password hashes. The work runs on its own
// goroutine so a cancelled request stops waiting for it.
type Hasher struct {
	cost int
}

func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	const op = "auth.Hash"

	hash, err := runCPU(ctx, func() ([]byte, error) {
		return bcrypt.GenerateFromPassword([]byte(password), h.cost)
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(hash), nil
}

// Compare returns ErrMismatchedPassword when password does not produce hash.
func (h *Hasher) Compare(ctx context.Context, hash, password string) error {
	const op = "auth.Compare"

	_, err := runCPU(ctx, func() ([]byte, error) {
		return nil, bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrMismatchedPassword
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

type cpuResult struct {
	out []byte
	err error
}

func runCPU(ctx context.Context, fn func() ([]byte, error)) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := make(chan cpuResult, 1)
	go func() {
		out, err := fn()
		done <- cpuResult{out: out, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		return res.out, res.err
	}
}
