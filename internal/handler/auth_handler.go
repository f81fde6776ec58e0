package handler

import (
	"unisphere/internal/service"
	"unisphere/pkg/jwt"
	"unisphere/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service *service.AuthService
}

func NewAuthHandler(s *service.AuthService) *AuthHandler {
	return &AuthHandler{service: s}
}

// Register 用户注册（需先获取验证码）
func (h *AuthHandler) Register(c *gin.Context) {
	type req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Otp      string `json:"otp"`
	}
	var r req
	if !bindJSON(c, &r) {
		return
	}
	user, token, err := h.service.Register(c.Request.Context(), r.Username, r.Email, r.Password, r.Otp)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, &response.AuthResponse{
		User:  response.FilterUserInfo(user),
		Token: token,
	})
}

// Login 用户登录
func (h *AuthHandler) Login(c *gin.Context) {
	type req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	var r req
	if !bindJSON(c, &r) {
		return
	}
	user, token, err := h.service.Login(c.Request.Context(), r.Email, r.Password)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, &response.AuthResponse{
		User:  response.FilterUserInfo(user),
		Token: token,
	})
}

// Me 获取当前用户资料（需要JWT认证）
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.service.Me(c.Request.Context(), jwt.GetUserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, response.FilterUserInfo(user))
}

type emailReq struct {
	Email string `json:"email"`
}

// SendOtp 注册验证码
func (h *AuthHandler) SendOtp(c *gin.Context) {
	var r emailReq
	if !bindJSON(c, &r) {
		return
	}
	res, err := h.service.RequestOtp(c.Request.Context(), r.Email)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, res)
}

// ForgotPassword 找回密码验证码
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var r emailReq
	if !bindJSON(c, &r) {
		return
	}
	res, err := h.service.ForgotPassword(c.Request.Context(), r.Email)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, res)
}

// VerifyOtp 校验验证码，不消费
func (h *AuthHandler) VerifyOtp(c *gin.Context) {
	type req struct {
		Email string `json:"email"`
		Otp   string `json:"otp"`
	}
	var r req
	if !bindJSON(c, &r) {
		return
	}
	if err := h.service.VerifyOtp(c.Request.Context(), r.Email, r.Otp); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"message": "OTP verified successfully", "verified": true})
}

// ResetPassword 用验证码重置密码
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	type req struct {
		Email       string `json:"email"`
		Otp         string `json:"otp"`
		NewPassword string `json:"newPassword"`
	}
	var r req
	if !bindJSON(c, &r) {
		return
	}
	if err := h.service.ResetPassword(c.Request.Context(), r.Email, r.Otp, r.NewPassword); err != nil {
		response.FromError(c, err)
		return
	}
	response.Message(c, "Password reset successfully")
}
