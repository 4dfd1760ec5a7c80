package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"livestream-pipeline/pkg/config"
	"livestream-pipeline/pkg/manager"
	"livestream-pipeline/pkg/middleware"
)

// NewEngine 创建 gin 引擎：中间件 + 健康检查 + 已注册的控制器路由
func NewEngine(cfg *config.Config) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.RequestContextMiddleware())

	// 健康检查不鉴权
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": cfg.ServiceRegistry.ServiceName,
		})
	})

	engine.Use(middleware.BearerAuthMiddleware(cfg.JWT.Secret, cfg.JWT.Issuer))
	manager.RegisterAllRoutes(engine)
	return engine
}
