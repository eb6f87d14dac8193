// Package jwtmw provides JWT issuance and validation for the admin registry API.
package jwtmw

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// EnvKeyJWTSecret is the environment variable holding the signing secret.
const EnvKeyJWTSecret = "JWT_SECRET"

// RoleAdmin is the role claim carried by admin tokens.
const RoleAdmin = "admin"

// Generator defines the interface for admin token generation.
type Generator interface {
	// GenerateToken creates a signed JWT for an authenticated administrator.
	GenerateToken() (string, error)
}

// generator implements the Generator interface.
type generator struct {
	secret     []byte
	expiration time.Duration
}

// NewGenerator creates a new JWT generator with the provided secret and expiration duration.
func NewGenerator(secret string, expiration time.Duration) Generator {
	return &generator{
		secret:     []byte(secret),
		expiration: expiration,
	}
}

// GenerateToken creates a signed JWT with the admin role claim.
func (g *generator) GenerateToken() (string, error) {
	claims := jwt.MapClaims{
		"sub":  "admin",
		"role": RoleAdmin,
		"exp":  time.Now().Add(g.expiration).Unix(),
		"iat":  time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}
