package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"notistore/internal/config"
	"notistore/internal/http/controller"
	"notistore/internal/http/middleware"
	"notistore/internal/metrics"
)

func NewRouter(cfg *config.Config, handler *controller.Handler, m metrics.Metrics, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.ZapLogger(logger),
		middleware.ZapRecovery(logger),
		otelgin.Middleware(cfg.OTELServiceName),
		middleware.Metrics(m),
	)

	router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/notifications", handler.CreateNotification)
	router.POST("/notifications/publish", handler.PublishNotification)
	router.GET("/notifications/:id", handler.GetNotification)
	router.PUT("/notifications/:id/read", handler.MarkRead)
	router.DELETE("/notifications/:id", handler.DeleteNotification)

	rooms := router.Group("/rooms/:room/notifications")
	rooms.GET("", handler.ListNotifications)
	rooms.GET("/unread_count", handler.UnreadCount)
	rooms.PUT("/read", handler.MarkAllRead)

	router.GET("/sse/:room", handler.SSE)

	return router
}
