package auth

import (
	"context"
	"errors"
	"strings"
)

var ErrMissingToken = errors.New("missing token")

type Verifier interface {
	Verify(token string) (int64, error)
}

// Authenticate resolves the value of an Authorization header to a user id.
// It returns ErrMissingToken for an empty header and ErrInvalidToken for
// anything else that does not verify.
func Authenticate(v Verifier, header string) (int64, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0, ErrMissingToken
	}

	scheme, token, _ := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return 0, ErrInvalidToken
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return 0, ErrMissingToken
	}

	userID, err := v.Verify(token)
	if err != nil {
		return 0, ErrInvalidToken
	}

	return userID, nil
}

type userIDKey struct{}

func ContextWithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the id stored by ContextWithUserID.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey{}).(int64)
	return id, ok
}
