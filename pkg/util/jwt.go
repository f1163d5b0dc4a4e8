package util

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// TokenPurpose is written to the aud claim. A token only verifies for the purpose it was issued for.
type TokenPurpose string

const (
	PurposeAccess TokenPurpose = "access"
	PurposeReset  TokenPurpose = "password-reset"
)

// Claims is the identity payload carried by credential and reset tokens.
// Reset tokens only set AccountID.
type Claims struct {
	AccountID uint    `json:"id"`
	Name      string  `json:"name,omitempty"`
	Email     string  `json:"email,omitempty"`
	Photo     *string `json:"photo,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 tokens with a shared secret
type TokenManager struct {
	secret     []byte
	defaultTTL time.Duration
	now        func() time.Time
}

type TokenOption func(*TokenManager)

// WithClock overrides the time source used for issuing and validating tokens
func WithClock(now func() time.Time) TokenOption {
	return func(m *TokenManager) {
		m.now = now
	}
}

func NewTokenManager(secret string, defaultTTL time.Duration, opts ...TokenOption) *TokenManager {
	m := &TokenManager{
		secret:     []byte(secret),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Issue signs claims for purpose with an expiry of ttl from now; ttl <= 0 uses the default TTL
func (m *TokenManager) Issue(purpose TokenPurpose, claims Claims, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}

	now := m.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Audience:  jwt.ClaimStrings{string(purpose)},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, structure, expiry and purpose and returns the embedded claims
func (m *TokenManager) Verify(tokenString string, purpose TokenPurpose) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithAudience(string(purpose)),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Decode extracts claims without checking the signature.
// Only call it on a token that already passed Verify.
func (m *TokenManager) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}
