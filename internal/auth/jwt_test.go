package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greendrake/commentguard/internal/models"
)

const testSecret = "test-jwt-secret"

func TestGenerateAndValidateJWT(t *testing.T) {
	token, err := GenerateJWT("u-1", "author", []string{"moderate_comments"}, testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateJWT(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, "author", claims.Role)

	caps := claims.CapabilitySet()
	assert.True(t, caps.Has(models.CapPublishPosts), "from role")
	assert.True(t, caps.Has(models.CapModerateComments), "from explicit list")
	assert.False(t, caps.Has(models.CapAdministerSite))
}

func TestValidateJWT_Rejects(t *testing.T) {
	token, err := GenerateJWT("u-1", "", nil, testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ValidateJWT(token, "other-secret")
	assert.Error(t, err, "wrong secret")

	expired, err := GenerateJWT("u-1", "", nil, testSecret, -time.Minute)
	require.NoError(t, err)
	_, err = ValidateJWT(expired, testSecret)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "u-1"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ValidateJWT(unsigned, testSecret)
	assert.Error(t, err, "alg none")
}

func TestClaims_CapabilitySetIgnoresUnknown(t *testing.T) {
	claims := &Claims{Role: "overlord", Capabilities: []string{"read", "root"}}
	assert.Equal(t, []string{"read"}, claims.CapabilitySet().Names())
}
