package job

import (
	"context"
	"fmt"
	"time"

	"unisphere/internal/repository"
	"unisphere/pkg/logger"
	"unisphere/pkg/metrics"
	"unisphere/pkg/redis"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	// DefaultSchedule 每30分钟执行一次
	DefaultSchedule = "@every 30m"

	// 过期验证码保留24小时
	otpRetention = 24 * time.Hour
	runTimeout   = time.Minute
)

// Cleaner 定期清理过期验证码和失效的在线状态
type Cleaner struct {
	otps     *repository.OtpRepository
	presence *redis.Presence
	now      func() time.Time
}

// NewCleaner presence 可以为 nil
func NewCleaner(otps *repository.OtpRepository, presence *redis.Presence) *Cleaner {
	return &Cleaner{otps: otps, presence: presence, now: time.Now}
}

// PurgeOtps 删除已使用或过期超过24小时的验证码
func (c *Cleaner) PurgeOtps(ctx context.Context) (int64, error) {
	n, err := c.otps.PurgeStale(ctx, c.now().Add(-otpRetention))
	if err != nil {
		return 0, fmt.Errorf("purge otps: %w", err)
	}
	return n, nil
}

// CleanPresence 把状态key已过期的用户移出在线集合
func (c *Cleaner) CleanPresence(ctx context.Context) (int, error) {
	n, err := c.presence.CleanExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("clean presence: %w", err)
	}
	return n, nil
}

// Run 执行一轮清理，单项失败不影响其他项
func (c *Cleaner) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if n, err := c.PurgeOtps(ctx); err != nil {
		metrics.JobRuns.WithLabelValues("purge_otps", "error").Inc()
		logger.Error("清理验证码失败", zap.Error(err))
	} else {
		metrics.JobRuns.WithLabelValues("purge_otps", "ok").Inc()
		logger.Info("清理验证码完成", zap.Int64("deleted", n))
	}

	if n, err := c.CleanPresence(ctx); err != nil {
		metrics.JobRuns.WithLabelValues("clean_presence", "error").Inc()
		logger.Warn("清理在线状态失败", zap.Error(err))
	} else {
		metrics.JobRuns.WithLabelValues("clean_presence", "ok").Inc()
		if n > 0 {
			logger.Info("清理在线状态完成", zap.Int("removed", n))
		}
	}
}

// cronLogger 把 cron 的日志接到 zap
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.L().Sugar().Debugw(msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.L().Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}

// Start 按 schedule 启动定时清理，返回的 cron 由调用方 Stop
func Start(c *Cleaner, schedule string) (*cron.Cron, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	l := cronLogger{}
	cr := cron.New(
		cron.WithLogger(l),
		cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
	)
	if _, err := cr.AddFunc(schedule, c.Run); err != nil {
		return nil, fmt.Errorf("schedule cleanup %q: %w", schedule, err)
	}
	cr.Start()
	return cr, nil
}
