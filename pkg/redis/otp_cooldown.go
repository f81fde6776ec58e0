package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const otpCooldownPrefix = keyPrefix + "otp:cooldown:"

// OtpCooldown 限制同一邮箱申请验证码的频率
type OtpCooldown struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewOtpCooldown rdb 为 nil 或 ttl<=0 时不做限制
func NewOtpCooldown(rdb *redis.Client, ttl time.Duration) *OtpCooldown {
	return &OtpCooldown{rdb: rdb, ttl: ttl}
}

// Acquire 占用冷却窗口，返回 false 表示窗口内已发送过
func (c *OtpCooldown) Acquire(ctx context.Context, email string) (bool, error) {
	if c == nil || c.rdb == nil || c.ttl <= 0 {
		return true, nil
	}
	ok, err := c.rdb.SetNX(ctx, cooldownKey(email), "1", c.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("otp cooldown setnx: %w", err)
	}
	return ok, nil
}

// Release 发送失败时释放窗口，允许立即重试
func (c *OtpCooldown) Release(ctx context.Context, email string) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	if err := c.rdb.Del(ctx, cooldownKey(email)).Err(); err != nil {
		return fmt.Errorf("otp cooldown del: %w", err)
	}
	return nil
}

func cooldownKey(email string) string {
	return otpCooldownPrefix + strings.ToLower(strings.TrimSpace(email))
}
