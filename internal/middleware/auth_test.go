package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"jobboard_chat/internal/domain"
	"jobboard_chat/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, secret string, claims JWTClaims) string {
	t.Helper()
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newAuthRouter() *gin.Engine {
	auth := NewAuthMiddleware(testSecret, "", logger.NewNop())

	router := gin.New()
	router.GET("/me", auth.RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": UserID(c),
			"role":    UserRole(c),
			"name":    DisplayName(c),
		})
	})
	return router
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	router := newAuthRouter()
	token := signToken(t, testSecret, JWTClaims{UserID: "10", Role: "employer", DisplayName: "Acme HR"})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"10","role":"employer","name":"Acme HR"}`, w.Body.String())
}

func TestRequireAuthAcceptsQueryToken(t *testing.T) {
	router := newAuthRouter()
	token := signToken(t, testSecret, JWTClaims{UserID: "42", Role: string(domain.RoleApplicant)})

	req := httptest.NewRequest(http.MethodGet, "/me?access_token="+token, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuthRejects(t *testing.T) {
	expired := JWTClaims{UserID: "10", Role: "employer"}
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"empty bearer", "Bearer "},
		{"wrong secret", "Bearer " + signToken(t, "other", JWTClaims{UserID: "10", Role: "employer"})},
		{"expired", "Bearer " + signToken(t, testSecret, expired)},
		{"unknown role", "Bearer " + signToken(t, testSecret, JWTClaims{UserID: "10", Role: "admin"})},
		{"no user id", "Bearer " + signToken(t, testSecret, JWTClaims{Role: "employer"})},
	}

	router := newAuthRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRequireAuthChecksIssuer(t *testing.T) {
	auth := NewAuthMiddleware(testSecret, "jobboard", logger.NewNop())
	router := gin.New()
	router.GET("/me", auth.RequireAuth(), func(c *gin.Context) { c.Status(http.StatusOK) })

	claims := JWTClaims{UserID: "10", Role: "employer"}
	claims.Issuer = "someone-else"

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, claims))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	claims.Issuer = "jobboard"
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, claims))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
