// Package security provides JWT token utilities
package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	RoleAdmin      = "admin"
	adminTokenType = "admin_auth"
)

var ErrInvalidAdminToken = errors.New("invalid admin token")

// AdminClaims identifies an authenticated dashboard user.
type AdminClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Type     string `json:"type"`
	jwt.RegisteredClaims
}

// GenerateAdminToken signs an HS256 token for the admin dashboard.
func GenerateAdminToken(username, jwtSecret string, ttl time.Duration) (string, error) {
	if jwtSecret == "" {
		return "", errors.New("jwt secret is not configured")
	}
	now := time.Now().UTC()
	claims := AdminClaims{
		Username: username,
		Role:     RoleAdmin,
		Type:     adminTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

// ValidateAdminToken verifies signature, expiry and token type.
func ValidateAdminToken(tokenString, jwtSecret string) (*AdminClaims, error) {
	if tokenString == "" || jwtSecret == "" {
		return nil, ErrInvalidAdminToken
	}

	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidAdminToken
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Type != adminTokenType || claims.Role != RoleAdmin {
		return nil, ErrInvalidAdminToken
	}
	return claims, nil
}
