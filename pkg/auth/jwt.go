// Package auth provides JWT issuance/validation and the per-request user
// context.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrExpiredToken is returned for structurally valid but expired tokens.
	ErrExpiredToken = errors.New("token has expired")
	// ErrInvalidSignature is returned when the signature check fails.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrInvalidToken covers every other validation failure.
	ErrInvalidToken = errors.New("invalid token")
)

// Claims are the token claims carried for a directory user.
type Claims struct {
	UID      string   `json:"uid"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	Policies []string `json:"policies"`
	jwt.RegisteredClaims
}

// Config holds the shared JWT settings. HS256 only.
type Config struct {
	SecretKey string
	Issuer    string
	Expiry    time.Duration
}

// Generator issues signed tokens.
type Generator struct {
	config Config
}

// NewGenerator creates a token generator.
func NewGenerator(config Config) (*Generator, error) {
	if config.SecretKey == "" {
		return nil, fmt.Errorf("jwt secret key is required")
	}
	if config.Expiry == 0 {
		config.Expiry = 24 * time.Hour
	}
	return &Generator{config: config}, nil
}

// GenerateToken issues a token for the given identity.
func (g *Generator) GenerateToken(uid, username string, roles, policies []string) (string, error) {
	now := time.Now()
	claims := Claims{
		UID:      uid,
		Username: username,
		Roles:    roles,
		Policies: policies,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			Issuer:    g.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.config.Expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(g.config.SecretKey))
}

// Validator checks signed tokens.
type Validator struct {
	config Config
}

// NewValidator creates a token validator.
func NewValidator(config Config) (*Validator, error) {
	if config.SecretKey == "" {
		return nil, fmt.Errorf("jwt secret key is required")
	}
	return &Validator{config: config}, nil
}

// ValidateToken parses and verifies a token, returning its claims.
func (v *Validator) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(v.config.SecretKey), nil
	},
		jwt.WithIssuer(v.config.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrInvalidToken
		}
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
