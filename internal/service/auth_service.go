package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
	"unicode/utf8"

	"unisphere/config"
	"unisphere/internal/model"
	"unisphere/internal/repository"
	"unisphere/pkg/db"
	"unisphere/pkg/jwt"
	"unisphere/pkg/logger"
	"unisphere/pkg/metrics"
	"unisphere/pkg/password"
	"unisphere/pkg/redis"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OTPSender 验证码投递
type OTPSender interface {
	SendOTP(ctx context.Context, toEmail, code string, ttl time.Duration) error
	DevMode() bool
}

// OtpResult 发送验证码的响应
type OtpResult struct {
	Message   string `json:"message"`
	ExpiresIn int    `json:"expiresIn"`
	DevMode   bool   `json:"devMode"`
}

// AuthService 注册、登录与验证码
type AuthService struct {
	store      *repository.Store
	jwtService *jwt.JWTService
	mailer     OTPSender
	cooldown   *redis.OtpCooldown
	cfg        config.AuthConfig

	now     func() time.Time
	newCode func() (string, error)
}

func NewAuthService(store *repository.Store, jwtService *jwt.JWTService, mailer OTPSender, cooldown *redis.OtpCooldown, cfg config.AuthConfig) *AuthService {
	return &AuthService{
		store:      store,
		jwtService: jwtService,
		mailer:     mailer,
		cooldown:   cooldown,
		cfg:        cfg,
		now:        time.Now,
		newCode:    generateOtp,
	}
}

// generateOtp 均匀分布在 [100000, 999999] 的6位验证码
func generateOtp() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) allowedDomain(email string) bool {
	return strings.HasSuffix(email, strings.ToLower(s.cfg.EmailDomain))
}

func validUsername(username string) bool {
	n := utf8.RuneCountInString(username)
	return n >= 3 && n <= 50
}

// Register 校验验证码后创建已验证用户并签发令牌
func (s *AuthService) Register(ctx context.Context, username, email, plainPassword, otp string) (*model.User, string, error) {
	username = strings.TrimSpace(username)
	email = normalizeEmail(email)
	otp = strings.TrimSpace(otp)
	if username == "" || email == "" || plainPassword == "" || otp == "" {
		return nil, "", Invalid("All fields including OTP are required")
	}
	// 先校验邮箱后缀，不合规的请求不访问数据库
	if !s.allowedDomain(email) {
		return nil, "", DomainRejected(s.cfg.EmailDomain)
	}
	if !validUsername(username) {
		return nil, "", ErrUsernameLength
	}

	record, err := s.store.Otps.FindValid(ctx, email, otp, s.now())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", ErrOtpInvalid
	}
	if err != nil {
		return nil, "", fmt.Errorf("find otp: %w", err)
	}

	exists, err := s.store.Users.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, "", fmt.Errorf("check user: %w", err)
	}
	if exists {
		return nil, "", ErrUserExists
	}

	hash, err := password.Hash(plainPassword)
	if err != nil {
		return nil, "", err
	}

	user := &model.User{Username: username, Email: email, Password: hash, IsVerified: true}
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		ok, err := tx.Otps.Consume(ctx, record.ID)
		if err != nil {
			return fmt.Errorf("consume otp: %w", err)
		}
		// 并发请求已抢先消费
		if !ok {
			return ErrOtpInvalid
		}
		if err := tx.Users.Create(ctx, user); err != nil {
			if db.IsDuplicateKey(err) {
				return ErrUserExists
			}
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, "", err
	}
	logger.Info("用户注册成功", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	return user, token, nil
}

// Login 邮箱密码登录；用户不存在与密码错误返回同一错误
func (s *AuthService) Login(ctx context.Context, email, plainPassword string) (*model.User, string, error) {
	email = normalizeEmail(email)
	if email == "" || plainPassword == "" {
		return nil, "", Invalid("Email and password are required")
	}
	if !s.allowedDomain(email) {
		return nil, "", DomainRejected(s.cfg.EmailDomain)
	}

	user, err := s.store.Users.GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("find user: %w", err)
	}
	if !password.Verify(plainPassword, user.Password) {
		return nil, "", ErrInvalidCredentials
	}
	if !user.IsVerified {
		return nil, "", ErrNotVerified
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// RequestOtp 注册前申请验证码
func (s *AuthService) RequestOtp(ctx context.Context, email string) (*OtpResult, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, Invalid("Email is required")
	}
	if !s.allowedDomain(email) {
		return nil, DomainRejected(s.cfg.EmailDomain)
	}
	return s.issueOtp(ctx, email)
}

// ForgotPassword 找回密码时申请验证码，要求账号存在
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (*OtpResult, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, Invalid("Email is required")
	}
	if !s.allowedDomain(email) {
		return nil, DomainRejected(s.cfg.EmailDomain)
	}

	_, err := s.store.Users.GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoAccount
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return s.issueOtp(ctx, email)
}

// issueOtp 删除旧验证码、保存新验证码并发送
func (s *AuthService) issueOtp(ctx context.Context, email string) (*OtpResult, error) {
	ok, err := s.cooldown.Acquire(ctx, email)
	if err != nil {
		// Redis 不可用时不阻断发送
		logger.Warn("验证码冷却检查失败", zap.String("email", email), zap.Error(err))
	} else if !ok {
		metrics.OtpSent.WithLabelValues("cooldown").Inc()
		return nil, ErrOtpCooldown
	}

	code, err := s.newCode()
	if err != nil {
		return nil, fmt.Errorf("generate otp: %w", err)
	}

	if err := s.store.Otps.DeleteUnused(ctx, email); err != nil {
		return nil, fmt.Errorf("delete old otp: %w", err)
	}
	record := &model.OtpVerification{Email: email, Otp: code, ExpiresAt: s.now().Add(s.cfg.OTPTTL)}
	if err := s.store.Otps.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("save otp: %w", err)
	}

	if err := s.mailer.SendOTP(ctx, email, code, s.cfg.OTPTTL); err != nil {
		logger.Error("验证码邮件发送失败", zap.String("email", email), zap.Error(err))
		metrics.OtpSent.WithLabelValues("error").Inc()
		if rerr := s.cooldown.Release(ctx, email); rerr != nil {
			logger.Warn("释放验证码冷却失败", zap.String("email", email), zap.Error(rerr))
		}
		return nil, &AppError{Kind: ErrOtpSendFailed.Kind, Message: ErrOtpSendFailed.Message, Err: err}
	}

	metrics.OtpSent.WithLabelValues("ok").Inc()
	res := &OtpResult{
		Message:   "OTP sent successfully to your email",
		ExpiresIn: int(s.cfg.OTPTTL.Seconds()),
		DevMode:   s.mailer.DevMode(),
	}
	if res.DevMode {
		res.Message = "OTP sent successfully (check server console in dev mode)"
	}
	return res, nil
}

// VerifyOtp 只检查验证码是否有效，不消费
func (s *AuthService) VerifyOtp(ctx context.Context, email, otp string) error {
	email = normalizeEmail(email)
	otp = strings.TrimSpace(otp)
	if email == "" || otp == "" {
		return Invalid("Email and OTP are required")
	}
	_, err := s.store.Otps.FindValid(ctx, email, otp, s.now())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOtpInvalid
	}
	if err != nil {
		return fmt.Errorf("find otp: %w", err)
	}
	return nil
}

// ResetPassword 校验验证码后更新密码，两者在同一事务中完成
func (s *AuthService) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	email = normalizeEmail(email)
	otp = strings.TrimSpace(otp)
	if email == "" || otp == "" || newPassword == "" {
		return Invalid("Email, OTP, and new password are required")
	}
	if password.TooShort(newPassword) {
		return Invalid(fmt.Sprintf("Password must be at least %d characters", password.MinLength))
	}

	record, err := s.store.Otps.FindValid(ctx, email, otp, s.now())
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOtpInvalid
	}
	if err != nil {
		return fmt.Errorf("find otp: %w", err)
	}

	user, err := s.store.Users.GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}

	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		ok, err := tx.Otps.Consume(ctx, record.ID)
		if err != nil {
			return fmt.Errorf("consume otp: %w", err)
		}
		if !ok {
			return ErrOtpInvalid
		}
		if err := tx.Users.UpdatePassword(ctx, user.ID, hash); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		return nil
	})
}

// Me 当前登录用户
func (s *AuthService) Me(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.store.Users.GetByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}
