package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"unisphere/config"
	"unisphere/internal/handler"
	"unisphere/internal/job"
	"unisphere/internal/model"
	"unisphere/internal/repository"
	"unisphere/internal/service"
	dbPkg "unisphere/pkg/db"
	"unisphere/pkg/jwt"
	"unisphere/pkg/logger"
	"unisphere/pkg/mail"
	"unisphere/pkg/middleware"
	redisPkg "unisphere/pkg/redis"
	"unisphere/pkg/storage"
	"unisphere/pkg/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	// 1. 加载配置
	cfg := config.LoadConfig()

	// 2. 初始化日志系统
	log := logger.InitLogger(cfg.Log)
	defer func() { _ = logger.Sync() }()

	log.Info("=== Unisphere 启动 ===")
	log.Info("服务器配置信息",
		zap.String("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("database_host", cfg.Database.Host),
		zap.Int("database_port", cfg.Database.Port),
		zap.String("database_name", cfg.Database.Database),
		zap.Bool("redis_enabled", cfg.Redis.Enabled()),
		zap.Bool("mail_configured", cfg.Mail.Configured()),
		zap.Bool("storage_enabled", cfg.Storage.Enabled()),
		zap.Duration("jwt_expire_time", cfg.JWT.ExpireTime),
		zap.String("log_level", cfg.Log.Level),
	)
	if cfg.Server.IsProduction() && (cfg.JWT.Secret == "" || cfg.JWT.Secret == "change-me") {
		log.Fatal("生产模式必须设置 JWT_SECRET")
	}

	// 3. 初始化数据库连接
	provider := dbPkg.NewProvider(cfg.Database)
	defer func() {
		if err := provider.Close(); err != nil {
			log.Error("关闭数据库连接失败", zap.Error(err))
		}
	}()
	gdb, err := provider.Get()
	if err != nil {
		log.Fatal("数据库连接失败", zap.Error(err))
	}
	log.Info("数据库连接成功")

	// 3.1 自动迁移表结构
	if err := provider.AutoMigrate(model.All()...); err != nil {
		log.Fatal("自动迁移失败", zap.Error(err))
	}
	log.Info("自动迁移完成")
	store := repository.NewStore(gdb)

	// 3.2 Redis（可选）
	startCtx, cancelStart := context.WithTimeout(context.Background(), 10*time.Second)
	rdb, err := redisPkg.NewClient(startCtx, cfg.Redis)
	if err != nil {
		// 连接失败时降级运行
		log.Warn("Redis不可用，发送冷却与在线状态已禁用", zap.Error(err))
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
		log.Info("Redis连接成功")
	}
	cooldown := redisPkg.NewOtpCooldown(rdb, cfg.Auth.OTPCooldown)
	presence := redisPkg.NewPresence(rdb)

	// 3.3 对象存储（可选）
	var presigner service.ObjectPresigner
	p, err := storage.NewPresigner(startCtx, cfg.Storage)
	cancelStart()
	switch {
	case err != nil:
		log.Warn("对象存储初始化失败，图片直传已禁用", zap.Error(err))
	case p != nil:
		presigner = p
	}

	// 3.4 初始化业务服务
	jwtSvc := jwt.NewJWTService(cfg.JWT)
	mailer := mail.NewMailer(cfg.Mail)
	if mailer.DevMode() {
		log.Warn("未配置SMTP凭据，验证码只输出到日志")
	}
	wsManager := websocket.NewManager(presence)

	notifier := service.NewNotificationService(store, wsManager)
	authSvc := service.NewAuthService(store, jwtSvc, mailer, cooldown, cfg.Auth)
	followSvc := service.NewFollowService(store, notifier)
	userSvc := service.NewUserService(store, followSvc)
	postSvc := service.NewPostService(store, notifier)
	messageSvc := service.NewMessageService(store, notifier)
	mediaSvc := service.NewMediaService(presigner)

	// 3.5 定时清理任务
	cleaner := job.NewCleaner(store.Otps, presence)
	cr, err := job.Start(cleaner, job.DefaultSchedule)
	if err != nil {
		log.Fatal("定时任务启动失败", zap.Error(err))
	}

	// 4. 设置Gin模式
	if os.Getenv("GIN_MODE") == "" {
		if cfg.Server.IsProduction() {
			gin.SetMode(gin.ReleaseMode)
		} else {
			gin.SetMode(gin.DebugMode)
		}
	}

	// 5. 创建Gin路由
	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst, 10*time.Minute)
	}
	router := handler.NewRouter(handler.Handlers{
		Auth:          handler.NewAuthHandler(authSvc),
		Users:         handler.NewUserHandler(followSvc, userSvc),
		Posts:         handler.NewPostHandler(postSvc),
		Messages:      handler.NewMessageHandler(messageSvc),
		Notifications: handler.NewNotificationHandler(notifier),
		Uploads:       handler.NewUploadHandler(mediaSvc),
		WebSocket:     websocket.NewHandler(wsManager, jwtSvc, cfg.WebSocket, cfg.CORS.AllowedOrigins),
	}, handler.RouterOptions{
		JWT:            jwtSvc,
		DB:             provider,
		AuthLimiter:    limiter,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
	})

	// 6. 创建HTTP服务器
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 7. 启动HTTP服务器
	go func() {
		log.Info("HTTP服务器启动", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP服务器启动失败", zap.Error(err))
		}
	}()

	// 8. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("正在关闭服务器...")

	// 设置关闭超时
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 先断开长连接，再停止接收新请求
	wsManager.CloseAll()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP服务器关闭失败", zap.Error(err))
	}

	select {
	case <-cr.Stop().Done():
	case <-ctx.Done():
		log.Warn("等待定时任务结束超时")
	}
	if limiter != nil {
		limiter.Stop()
	}

	log.Info("服务器已安全关闭")
}
