package response

import (
	"errors"
	"net/http"
	"time"

	"unisphere/internal/model"
	"unisphere/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorBody 统一错误响应结构
type ErrorBody struct {
	Message string `json:"message"`         // 面向客户端的错误信息
	Error   string `json:"error,omitempty"` // 错误详情（仅在开发环境显示）
}

// StatusError 可映射为HTTP状态码的业务错误
type StatusError interface {
	error
	HTTPStatus() int
	PublicMessage() string
}

// OK 200 成功响应
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created 201 成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// Message 仅包含提示信息的成功响应
func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"message": message})
}

// Error 错误响应
func Error(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorBody{Message: message})
}

// ErrorWithDetails 带错误详情的错误响应
func ErrorWithDetails(c *gin.Context, status int, message string, err error) {
	body := ErrorBody{Message: message}

	// 在开发环境下显示错误详情
	if gin.Mode() == gin.DebugMode && err != nil {
		body.Error = err.Error()
	}

	c.AbortWithStatusJSON(status, body)
}

// FromError 把服务层错误转换为响应；未知错误只记录日志，客户端收到通用信息
func FromError(c *gin.Context, err error) {
	var se StatusError
	if errors.As(err, &se) {
		if se.HTTPStatus() >= http.StatusInternalServerError {
			logger.Error("请求处理失败",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
		}
		Error(c, se.HTTPStatus(), se.PublicMessage())
		return
	}

	logger.Error("请求处理失败",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	_ = c.Error(err)
	ErrorWithDetails(c, http.StatusInternalServerError, "Internal server error", err)
}

// BadRequest 400错误
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized 401错误
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// Forbidden 403错误
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message)
}

// NotFound 404错误
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// MethodNotAllowed 405错误
func MethodNotAllowed(c *gin.Context) {
	Error(c, http.StatusMethodNotAllowed, "Method not allowed")
}

// TooManyRequests 429错误
func TooManyRequests(c *gin.Context, message string) {
	Error(c, http.StatusTooManyRequests, message)
}

// UserInfo 用户信息（隐藏密码哈希）
type UserInfo struct {
	ID           uint      `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Bio          string    `json:"bio"`
	ProfileImage string    `json:"profile_image"`
	University   string    `json:"university"`
	Department   string    `json:"department"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
}

// FilterUserInfo 过滤用户信息，隐藏敏感字段
func FilterUserInfo(user *model.User) *UserInfo {
	if user == nil {
		return nil
	}

	return &UserInfo{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		Bio:          user.Bio,
		ProfileImage: user.ProfileImage,
		University:   user.University,
		Department:   user.Department,
		IsVerified:   user.IsVerified,
		CreatedAt:    user.CreatedAt,
	}
}

// AuthResponse 注册/登录响应
type AuthResponse struct {
	User  *UserInfo `json:"user"`
	Token string    `json:"token"`
}
