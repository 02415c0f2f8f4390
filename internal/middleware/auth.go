package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"jobboard_chat/internal/domain"
	"jobboard_chat/pkg/logger"
)

const (
	ContextUserID      = "user_id"
	ContextUserRole    = "user_role"
	ContextDisplayName = "user_display_name"
)

// AuthMiddleware валидирует JWT токены, выданные бэкендом job-board
type AuthMiddleware struct {
	jwtSecret []byte
	issuer    string
	log       logger.Logger
}

// JWTClaims - claims фронтенда: id пользователя и его роль в чате
type JWTClaims struct {
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name,omitempty"`
	jwt.RegisteredClaims
}

func NewAuthMiddleware(jwtSecret, issuer string, log logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: []byte(jwtSecret),
		issuer:    issuer,
		log:       log,
	}
}

// RequireAuth требует валидный токен в заголовке Authorization.
// Браузерный WebSocket не умеет ставить заголовки, поэтому для него допускается ?access_token=
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := extractToken(c)
		if err != nil {
			m.log.Debug("Missing or malformed token", "path", c.Request.URL.Path, "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		claims, err := m.parseToken(tokenString)
		if err != nil {
			m.log.Warn("Token validation failed", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		role, err := domain.ParseRole(claims.Role)
		if err != nil || strings.TrimSpace(claims.UserID) == "" {
			m.log.Warn("Token has no chat identity", "user_id", claims.UserID, "role", claims.Role)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid user identity in token"})
			return
		}

		c.Set(ContextUserID, strings.TrimSpace(claims.UserID))
		c.Set(ContextUserRole, role)
		c.Set(ContextDisplayName, claims.DisplayName)

		c.Next()
	}
}

func (m *AuthMiddleware) parseToken(tokenString string) (*JWTClaims, error) {
	options := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if m.issuer != "" {
		options = append(options, jwt.WithIssuer(m.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.jwtSecret, nil
	}, options...)
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token claims")
}

func extractToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if token := c.Query("access_token"); token != "" {
			return token, nil
		}
		return "", fmt.Errorf("authorization header required")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", fmt.Errorf("invalid authorization header format")
	}
	return parts[1], nil
}

// UserID возвращает id пользователя, установленный RequireAuth
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

func UserRole(c *gin.Context) domain.Role {
	role, _ := c.Get(ContextUserRole)
	r, _ := role.(domain.Role)
	return r
}

func DisplayName(c *gin.Context) string {
	return c.GetString(ContextDisplayName)
}
