package testutil

import (
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// tokenAudience must match the audience the API validates
const tokenAudience = "railtrace-api"

// MintToken signs an access token for userID/role with TestJWTSecret
func MintToken(t *testing.T, userID, role string) string {
	t.Helper()

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"iss":  TestConfig().JWTIssuer,
		"aud":  []string{tokenAudience},
		"iat":  now.Unix(),
		"nbf":  now.Unix(),
		"exp":  now.Add(time.Hour).Unix(),
		"jti":  uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(TestJWTSecret))
	if err != nil {
		t.Fatalf("Failed to sign test token: %v", err)
	}
	return signed
}

// BearerHeader returns the Authorization header value for a freshly minted token
func BearerHeader(t *testing.T, userID, role string) string {
	t.Helper()
	return "Bearer " + MintToken(t, userID, role)
}

// MockAuth returns a middleware that authenticates every request as userID/role
func MockAuth(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		SetMockAuthContext(c, userID, role)
		c.Next()
	}
}

// SetMockAuthContext sets the values the auth middleware would have stored
func SetMockAuthContext(c *gin.Context, userID, role string) {
	c.Set("user_id", userID)
	c.Set("role", role)
}
