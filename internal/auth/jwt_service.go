package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenExpiry is the duration for which access tokens are valid.
const AccessTokenExpiry = 12 * time.Hour

func init() {
	// iat carries milliseconds so revocation marks can tell apart tokens issued within one second.
	jwt.TimePrecision = time.Millisecond
}

var (
	// ErrInvalidToken is returned for malformed, tampered, expired or wrongly signed tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenRevoked is returned when the token was issued before its subject was revoked.
	ErrTokenRevoked = errors.New("token revoked")
)

// Payload is the session data embedded in a token.
type Payload struct {
	UserID  uint
	Name    string
	Email   string
	IsAdmin bool
}

// Claims represents JWT claims. UserID is serialised as the standard "sub" claim.
type Claims struct {
	UserID  uint   `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// Payload returns the session data carried by the claims.
func (c *Claims) Payload() Payload {
	return Payload{UserID: c.UserID, Name: c.Name, Email: c.Email, IsAdmin: c.IsAdmin}
}

// JWTService handles JWT token generation and validation.
type JWTService struct {
	secret []byte
	now    func() time.Time
}

// Option configures a JWTService.
type Option func(*JWTService)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *JWTService) {
		s.now = now
	}
}

// NewJWTService creates a new JWT service with the given secret.
func NewJWTService(secret string, opts ...Option) *JWTService {
	s := &JWTService{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue signs an access token for p valid for AccessTokenExpiry.
func (s *JWTService) Issue(p Payload) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID:  p.UserID,
		Name:    p.Name,
		Email:   p.Email,
		IsAdmin: p.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify validates a token and returns its claims.
func (s *JWTService) Verify(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithIssuedAt(),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
