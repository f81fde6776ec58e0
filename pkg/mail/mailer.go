package mail

import (
	"context"
	"fmt"
	"strings"
	"time"

	"unisphere/config"
	"unisphere/pkg/logger"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer 通过 SMTP 发送验证码邮件
// 未配置 SMTP 账号时进入开发模式：验证码写入日志，不视为失败
type Mailer struct {
	cfg  config.MailConfig
	send func(m *gomail.Message) error
}

// NewMailer 创建邮件发送器
func NewMailer(cfg config.MailConfig) *Mailer {
	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password)
	return &Mailer{cfg: cfg, send: func(m *gomail.Message) error { return d.DialAndSend(m) }}
}

// DevMode 是否处于开发模式（不真正发信）
func (m *Mailer) DevMode() bool {
	return !m.cfg.Configured()
}

// SendOTP 发送邮箱验证码
func (m *Mailer) SendOTP(ctx context.Context, toEmail, code string, ttl time.Duration) error {
	if strings.TrimSpace(toEmail) == "" {
		return fmt.Errorf("empty recipient")
	}
	minutes := int(ttl.Minutes())

	if m.DevMode() {
		logger.Warn("SMTP未配置，验证码仅输出到日志",
			zap.String("to", toEmail),
			zap.String("otp", code),
			zap.Int("expires_in_minutes", minutes),
		)
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.cfg.Username, m.cfg.FromName)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", "Your Unisphere Verification Code")
	msg.SetBody("text/html", otpBody(code, minutes))

	if err := m.send(msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("验证码邮件已发送", zap.String("to", toEmail))
	return nil
}

func otpBody(code string, minutes int) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background: #2563EB; color: #fff; padding: 20px; text-align: center; border-radius: 8px 8px 0 0;">
      <h1>Unisphere</h1>
    </div>
    <div style="background: #f9f9f9; padding: 30px; border-radius: 0 0 8px 8px;">
      <h2>Verify Your Email</h2>
      <p>Use the following code to continue:</p>
      <div style="background: #fff; border: 2px solid #2563EB; padding: 20px; text-align: center; font-size: 32px; font-weight: bold; letter-spacing: 8px; border-radius: 8px;">%s</div>
      <p><strong>This code will expire in %d minutes.</strong></p>
      <p>If you didn't request this code, please ignore this email.</p>
    </div>
  </div>
</body>
</html>`, code, minutes)
}
