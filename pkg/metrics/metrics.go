package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "unisphere_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "unisphere_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	// NotificationFailures 通知写入失败次数（主操作不受影响）
	NotificationFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "unisphere_notification_failures_total",
		Help: "Notifications that could not be stored after the primary write committed",
	}, []string{"type"})
	OtpSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "unisphere_otp_sent_total",
		Help: "OTP issue attempts by result",
	}, []string{"result"})

	WsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "unisphere_ws_connections",
		Help: "Current number of active websocket connections",
	})
	WsPushTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "unisphere_ws_push_total",
		Help: "Live pushes by event type",
	}, []string{"event"})

	JobRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "unisphere_job_runs_total",
		Help: "Housekeeping job runs by job and result",
	}, []string{"job", "result"})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration,
		NotificationFailures, OtpSent,
		WsConnections, WsPushTotal,
		JobRuns,
	)
}

// GinMiddleware 统计基础请求指标，供 Prometheus 拉取。
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := strconv.Itoa(c.Writer.Status())
		// 未匹配路由统一归类，避免路径标签无限增长
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		labels := prometheus.Labels{"method": c.Request.Method, "path": path, "status": status}
		HTTPRequestsTotal.With(labels).Inc()
		HTTPRequestDuration.With(labels).Observe(time.Since(start).Seconds())
	}
}

// Handler /metrics 抓取入口
func Handler() http.Handler {
	return promhttp.Handler()
}
