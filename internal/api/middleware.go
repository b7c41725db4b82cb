// internal/api/middleware.go
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Corphon/ContentPlannerMCP/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// requestIDMiddleware 沿用调用方的请求ID，没有时生成一个
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// loggerMiddleware 访问日志与请求指标
func loggerMiddleware(logger *utils.Logger, metrics *utils.APIMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		elapsed := time.Since(start)
		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		if metrics != nil {
			metrics.RecordAPIRequest(route, c.Request.Method, status, elapsed)
		}

		fields := []utils.Field{
			utils.String("method", c.Request.Method),
			utils.String("path", c.Request.URL.Path),
			utils.Int("status", status),
			utils.Duration("latency", elapsed),
			utils.String("client_ip", c.ClientIP()),
			utils.String("request_id", c.GetString(requestIDKey)),
		}
		if status >= http.StatusInternalServerError {
			logger.Warn("请求完成", fields...)
			return
		}
		logger.Info("请求完成", fields...)
	}
}

// recoveryMiddleware 处理器panic时返回标准错误响应
func recoveryMiddleware(logger *utils.Logger, response *ResponseHelper) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("请求处理panic",
			utils.String("path", c.Request.URL.Path),
			utils.String("request_id", c.GetString(requestIDKey)),
			utils.Any("panic", recovered))
		response.InternalError(c, "服务器内部错误", fmt.Sprintf("%v", recovered))
	})
}

// corsMiddleware 实现跨域资源共享
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		c.Writer.Header().Set("Access-Control-Expose-Headers", requestIDHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
