package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"greendrake/commentguard/internal/auth"
	"greendrake/commentguard/internal/models"
)

const (
	// ContextKeyUserID holds the key for user ID in Gin context.
	ContextKeyUserID = "userID"
	// ContextKeyCapabilities holds the key for the actor's models.CapabilitySet in Gin context.
	ContextKeyCapabilities = "capabilities"
)

var errNoToken = errors.New("authorization header required")

func bearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", errNoToken
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", errors.New("authorization header format must be Bearer {token}")
	}
	return parts[1], nil
}

func setActor(c *gin.Context, claims *auth.Claims) {
	c.Set(ContextKeyUserID, claims.UserID)
	c.Set(ContextKeyCapabilities, claims.CapabilitySet())
}

// OptionalAuth identifies the actor when a valid bearer token is present. Anonymous
// and badly authenticated requests continue with an empty capability set.
func OptionalAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyCapabilities, models.CapabilitySet{})

		tokenString, err := bearerToken(c)
		if err != nil {
			c.Next()
			return
		}
		if claims, err := auth.ValidateJWT(tokenString, jwtSecret); err == nil {
			setActor(c, claims)
		}
		c.Next()
	}
}

// AuthMiddleware creates a Gin middleware for JWT authentication.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		claims, err := auth.ValidateJWT(tokenString, jwtSecret)
		if err != nil {
			errMsg := fmt.Sprintf("Invalid or expired token: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errMsg})
			return
		}

		setActor(c, claims)
		c.Next()
	}
}

// RequireCapability rejects actors lacking want. Assumes AuthMiddleware runs first.
func RequireCapability(want models.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ActorCapabilities(c).Has(want) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": fmt.Sprintf("Capability %s required", want)})
			return
		}
		c.Next()
	}
}

// ActorCapabilities returns the capabilities set by the auth middleware, or an empty set.
func ActorCapabilities(c *gin.Context) models.CapabilitySet {
	if v, ok := c.Get(ContextKeyCapabilities); ok {
		if caps, ok := v.(models.CapabilitySet); ok {
			return caps
		}
	}
	return models.CapabilitySet{}
}
