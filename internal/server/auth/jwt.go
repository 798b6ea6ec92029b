// Package auth issues and verifies the signed, time-limited bearer tokens that
// carry an account's email as their subject.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/you-kimono/checkilists/internal/common"
)

// TokenType is reported to clients next to every issued token.
const TokenType = "bearer"

// Claims are the registered JWT claims; Subject holds the account email.
type Claims struct {
	jwt.RegisteredClaims
}

// GenerateToken signs an HS256 token for subject that expires after validityDuration.
func GenerateToken(subject string, secretKey []byte, validityDuration time.Duration) (string, error) {
	return generateToken(subject, secretKey, validityDuration, time.Now())
}

func generateToken(subject string, secretKey []byte, validityDuration time.Duration, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetSubjectFromToken verifies signature, algorithm and expiry and returns the
// subject. Every failure wraps common.ErrInvalidToken.
func GetSubjectFromToken(tokenString string, secretKey []byte) (string, error) {
	return getSubjectFromToken(tokenString, secretKey, time.Now)
}

func getSubjectFromToken(tokenString string, secretKey []byte, now func() time.Time) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}

// TokenService binds the signing secret and the configured token lifetime.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secretKey string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secretKey), ttl: ttl, now: time.Now}
}

// Issue produces a token for subject valid for the configured lifetime.
func (s *TokenService) Issue(subject string) (string, error) {
	return s.IssueWithTTL(subject, s.ttl)
}

func (s *TokenService) IssueWithTTL(subject string, ttl time.Duration) (string, error) {
	return generateToken(subject, s.secret, ttl, s.now())
}

// Verify returns the token's subject or an error wrapping common.ErrInvalidToken.
func (s *TokenService) Verify(token string) (string, error) {
	return getSubjectFromToken(token, s.secret, s.now)
}
