package jwt

import (
	"strings"

	"unisphere/pkg/logger"
	"unisphere/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// ContextUserIDKey 用户ID在gin.Context中的键名
	ContextUserIDKey = "user_id"
	// ContextClaimsKey JWT声明在gin.Context中的键名
	ContextClaimsKey = "jwt_claims"
)

// AuthMiddleware JWT认证中间件
// 从请求头中提取 Authorization: Bearer <token>，验证后把用户ID存入gin.Context
func (s *JWTService) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "No token provided")
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			response.Unauthorized(c, "No token provided")
			return
		}

		claims, err := s.ValidateToken(strings.TrimSpace(tokenString))
		if err != nil {
			logger.Debug("JWT验证失败", zap.Error(err), zap.String("path", c.Request.URL.Path))
			response.Unauthorized(c, "Invalid token")
			return
		}

		// ValidateToken 已保证 Subject 可解析
		userID, _ := claims.UserID()
		c.Set(ContextUserIDKey, userID)
		c.Set(ContextClaimsKey, claims)

		c.Next()
	}
}

// GetUserID 从gin.Context中获取当前用户ID，未认证时返回0
func GetUserID(c *gin.Context) uint {
	if userID, exists := c.Get(ContextUserIDKey); exists {
		if id, ok := userID.(uint); ok {
			return id
		}
	}
	return 0
}

// GetClaims 从gin.Context中获取JWT声明
func GetClaims(c *gin.Context) *CustomClaims {
	if claims, exists := c.Get(ContextClaimsKey); exists {
		if cc, ok := claims.(*CustomClaims); ok {
			return cc
		}
	}
	return nil
}
