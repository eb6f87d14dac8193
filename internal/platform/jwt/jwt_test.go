package jwtmw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGenerator_GenerateToken(t *testing.T) {
	t.Parallel()

	g := NewGenerator(testSecret, time.Hour)
	signed, err := g.GenerateToken()
	require.NoError(t, err)

	token, err := jwt.Parse(signed, func(t *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "admin", claims["sub"])
	assert.Equal(t, RoleAdmin, claims["role"])
}

func TestAdminRequired(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv(EnvKeyJWTSecret, testSecret)

	g := NewGenerator(testSecret, time.Hour)
	valid, err := g.GenerateToken()
	require.NoError(t, err)

	// 期限切れトークン
	expired, err := NewGenerator(testSecret, -time.Hour).GenerateToken()
	require.NoError(t, err)

	// adminロールを持たないトークン
	noRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "someone",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{name: "success: valid admin token", authHeader: "Bearer " + valid, expectedStatus: http.StatusOK},
		{name: "error: missing header", authHeader: "", expectedStatus: http.StatusUnauthorized},
		{name: "error: malformed header", authHeader: "Token abc", expectedStatus: http.StatusUnauthorized},
		{name: "error: expired token", authHeader: "Bearer " + expired, expectedStatus: http.StatusUnauthorized},
		{name: "error: missing admin role", authHeader: "Bearer " + noRole, expectedStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/protected", AdminRequired(), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
