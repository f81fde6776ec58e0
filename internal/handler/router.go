package handler

import (
	"context"
	"time"

	"unisphere/pkg/db"
	"unisphere/pkg/jwt"
	"unisphere/pkg/logger"
	"unisphere/pkg/metrics"
	"unisphere/pkg/middleware"
	"unisphere/pkg/response"
	"unisphere/pkg/websocket"

	"github.com/gin-gonic/gin"
)

// Handlers 路由依赖的全部处理器
type Handlers struct {
	Auth          *AuthHandler
	Users         *UserHandler
	Posts         *PostHandler
	Messages      *MessageHandler
	Notifications *NotificationHandler
	Uploads       *UploadHandler
	WebSocket     *websocket.Handler
}

// RouterOptions 路由级别的中间件配置
type RouterOptions struct {
	JWT            *jwt.JWTService
	DB             *db.Provider
	AuthLimiter    *middleware.RateLimiter // nil 表示不限流
	AllowedOrigins []string
	MaxBodyBytes   int64
}

// NewRouter 创建Gin路由
func NewRouter(h Handlers, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(logger.LoggerMiddleware())
	router.Use(logger.ErrorLoggerMiddleware())
	router.Use(metrics.GinMiddleware())
	router.Use(middleware.CORS(opts.AllowedOrigins))
	if opts.MaxBodyBytes > 0 {
		router.Use(middleware.BodyLimit(opts.MaxBodyBytes))
	}

	router.NoRoute(func(c *gin.Context) { response.NotFound(c, "Not found") })
	router.NoMethod(response.MethodNotAllowed)

	health := healthHandler(opts.DB)
	router.GET("/health", health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	if h.WebSocket != nil {
		router.GET("/ws", h.WebSocket.Serve)
	}

	api := router.Group("/api")
	api.GET("/health", health)

	auth := opts.JWT.AuthMiddleware()
	var limit gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if opts.AuthLimiter != nil {
		limit = opts.AuthLimiter.Middleware()
	}

	// 认证相关（公开接口限流）
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", limit, h.Auth.Register)
		authGroup.POST("/login", limit, h.Auth.Login)
		authGroup.POST("/send-otp", limit, h.Auth.SendOtp)
		authGroup.POST("/forgot-password", limit, h.Auth.ForgotPassword)
		authGroup.POST("/verify-otp", limit, h.Auth.VerifyOtp)
		authGroup.POST("/reset-password", limit, h.Auth.ResetPassword)
		authGroup.GET("/me", auth, h.Auth.Me)
	}

	// 以下接口都需要认证
	posts := api.Group("/posts", auth)
	{
		posts.POST("/create", h.Posts.Create)
		posts.PUT("/update", h.Posts.Update)
		posts.DELETE("/delete", h.Posts.Delete)
		posts.GET("/feed", h.Posts.Feed)
		posts.GET("/explore", h.Posts.Explore)
		posts.POST("/:id/like", h.Posts.ToggleLike)
		posts.GET("/:id/comments", h.Posts.ListComments)
		posts.POST("/:id/comments", h.Posts.AddComment)
	}

	api.POST("/follow/:id", auth, h.Users.ToggleFollow)
	api.GET("/follow/following", auth, h.Users.Following)
	api.GET("/followers/:id", auth, h.Users.Followers)
	api.GET("/stats/:id", auth, h.Users.Stats)

	users := api.Group("/users", auth)
	{
		users.GET("/suggestions", h.Users.Suggestions)
		users.PUT("/profile", h.Users.UpdateProfile)
		users.GET("/:user", h.Users.Profile)
		users.GET("/:user/posts", h.Posts.UserPosts)
	}

	messages := api.Group("/messages", auth)
	{
		messages.GET("/conversations", h.Messages.Conversations)
		messages.POST("/start", h.Messages.StartConversation)
		messages.GET("/:id", h.Messages.ListMessages)
		messages.POST("/:id/send", h.Messages.SendMessage)
		messages.POST("/:id/read", h.Messages.MarkRead)
	}

	notifications := api.Group("/notifications", auth)
	{
		notifications.GET("", h.Notifications.List)
		notifications.GET("/unread-count", h.Notifications.UnreadCount)
		notifications.POST("/read", h.Notifications.MarkRead)
	}

	api.POST("/uploads/presign", auth, h.Uploads.Presign)

	return router
}

// healthHandler 存活检查，附带数据库状态
func healthHandler(provider *db.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		database := "connected"
		if provider == nil {
			database = "unknown"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := provider.HealthCheck(ctx); err != nil {
				database = "disconnected"
			}
		}
		response.OK(c, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "unisphere",
			"database":  database,
		})
	}
}
