// internal/api/router.go
package api

import (
	"fmt"

	"github.com/Corphon/ContentPlannerMCP/internal/di"
	"github.com/Corphon/ContentPlannerMCP/internal/services"
	"github.com/Corphon/ContentPlannerMCP/internal/utils"
	"github.com/gin-gonic/gin"
)

// SetupRouter 从依赖注入容器取出服务并配置HTTP路由
func SetupRouter() (*gin.Engine, error) {
	container := di.GetContainer()

	generationService, err := di.Resolve[*services.GenerationService](container, "generation")
	if err != nil {
		return nil, fmt.Errorf("生成服务未正确初始化: %w", err)
	}

	metrics, err := di.Resolve[*utils.APIMetrics](container, "metrics")
	if err != nil {
		return nil, fmt.Errorf("指标服务未正确初始化: %w", err)
	}

	return NewRouter(NewHandler(generationService, metrics), utils.GetLogger()), nil
}

// NewRouter 创建路由
func NewRouter(handler *Handler, logger *utils.Logger) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(requestIDMiddleware())
	r.Use(recoveryMiddleware(logger, handler.Response))
	r.Use(loggerMiddleware(logger, handler.Metrics))
	r.Use(corsMiddleware())

	r.NoRoute(func(c *gin.Context) {
		handler.Response.NotFound(c, "接口", c.Request.URL.Path)
	})
	r.NoMethod(handler.Response.MethodNotAllowed)

	api := r.Group("/api")
	{
		api.POST("/generate", handler.Generate)
		api.GET("/health", handler.Health)
	}

	if handler.Metrics != nil {
		r.GET("/metrics", gin.WrapH(handler.Metrics.Handler()))
	}

	return r
}
