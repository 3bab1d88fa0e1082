package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 bearer tokens. It holds no mutable
// state and is safe for concurrent use.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager returns a manager signing with secret. A zero ttl issues
// tokens without an exp claim.
func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	const op = "auth.NewTokenManager"

	if secret == "" {
		return nil, fmt.Errorf("%s: empty signing secret", op)
	}
	if ttl < 0 {
		return nil, fmt.Errorf("%s: negative ttl %s", op, ttl)
	}

	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

func (m *TokenManager) Issue(userID int64) (string, error) {
	const op = "auth.Issue"

	if userID <= 0 {
		return "", fmt.Errorf("%s: invalid user id %d", op, userID)
	}

	tokenID, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	now := m.now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  strconv.FormatInt(userID, 10),
			IssuedAt: jwt.NewNumericDate(now),
			ID:       tokenID.String(),
		},
	}
	if m.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// Verify returns the user id embedded in token. Every failure is reported as
// ErrInvalidToken.
func (m *TokenManager) Verify(token string) (int64, error) {
	const op = "auth.Verify"

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, m.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return 0, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if claims.UserID <= 0 || claims.IssuedAt == nil {
		return 0, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return claims.UserID, nil
}

func (m *TokenManager) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %s", token.Method.Alg())
	}
	return m.secret, nil
}
