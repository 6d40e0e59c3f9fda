package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sarbjeetmaan/backend/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and resolves HS256 bearer tokens carrying the caller's email and role.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (m *TokenManager) Issue(identity domain.Identity) (string, error) {
	if identity.Email == "" {
		return "", fmt.Errorf("%w: identity email is empty", domain.ErrValidation)
	}
	issuedAt := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: string(identity.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Email,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(m.ttl)),
		},
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("could not sign token: %w", err)
	}
	return signed, nil
}

// Resolve validates a raw bearer token and returns the identity it carries.
func (m *TokenManager) Resolve(rawToken string) (domain.Identity, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return domain.Identity{}, fmt.Errorf("%w: token is missing", domain.ErrUnauthenticated)
	}

	parsed := &claims{}
	_, err := jwt.ParseWithClaims(rawToken, parsed, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Identity{}, fmt.Errorf("%w: token expired", domain.ErrInvalidCredential)
		}
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrInvalidCredential, err)
	}

	if parsed.Subject == "" {
		return domain.Identity{}, fmt.Errorf("%w: token has no subject", domain.ErrInvalidCredential)
	}
	role, err := domain.ParseRole(parsed.Role)
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{Email: parsed.Subject, Role: role}, nil
}
