package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"greendrake/commentguard/internal/models"
)

// Claims defines the structure of the actor token. Role and Capabilities are both
// optional; the actor holds the union of what they grant.
type Claims struct {
	UserID       string   `json:"user_id"`
	Role         string   `json:"role,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`
	jwt.RegisteredClaims
}

// CapabilitySet returns the capabilities held by the actor. Unknown roles and
// capability names are ignored.
func (c *Claims) CapabilitySet() models.CapabilitySet {
	set := models.NewCapabilitySet(c.Capabilities...)
	for _, granted := range models.RoleCapabilities[c.Role] {
		set[granted] = struct{}{}
	}
	return set
}

// GenerateJWT creates a new actor token.
func GenerateJWT(userID, role string, capabilities []string, secretKey string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:       userID,
		Role:         role,
		Capabilities: capabilities,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT verifies a JWT string and returns the claims if valid.
func ValidateJWT(tokenString string, secretKey string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid JWT")
	}

	return claims, nil
}
