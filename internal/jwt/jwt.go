// Package jwt issues and verifies the signed bearer tokens handed out at
// registration and login.
package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// TokenTTL is how long an issued token stays valid.
const TokenTTL = time.Hour

var (
	// ErrMissingSecret is returned when no signing key is configured.
	ErrMissingSecret = errors.New("jwt: signing secret is not configured")
	// ErrInvalidToken covers bad signatures, malformed tokens and expiry.
	ErrInvalidToken = errors.New("jwt: invalid token")
)

// Claims embeds the user id under "_id" alongside iat/exp.
type Claims struct {
	UserID string `json:"_id"`
	gojwt.RegisteredClaims
}

// JWTService signs and verifies HS256 tokens with one process-wide secret.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTService fails closed: without a secret there is no service.
func NewJWTService(secret string) (*JWTService, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &JWTService{
		secret: []byte(secret),
		ttl:    TokenTTL,
		now:    time.Now,
	}, nil
}

// GenerateToken issues a token for userID valid for TokenTTL.
func (s *JWTService) GenerateToken(userID string) (string, error) {
	if s == nil || len(s.secret) == 0 {
		return "", ErrMissingSecret
	}
	now := s.now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: gojwt.RegisteredClaims{
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken checks signature and expiry and returns the embedded user id.
func (s *JWTService) ValidateToken(token string) (string, error) {
	if s == nil || len(s.secret) == 0 {
		return "", ErrMissingSecret
	}
	claims := &Claims{}
	parsed, err := gojwt.ParseWithClaims(token, claims, func(t *gojwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithExpirationRequired(),
		gojwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}
