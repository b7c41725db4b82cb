// internal/api/handlers.go
package api

import (
	"io"
	"net/http"
	"time"

	"github.com/Corphon/ContentPlannerMCP/internal/models"
	"github.com/Corphon/ContentPlannerMCP/internal/services"
	"github.com/Corphon/ContentPlannerMCP/internal/utils"
	"github.com/gin-gonic/gin"
)

// Handler 处理API请求
type Handler struct {
	GenerationService *services.GenerationService // 生成代理
	Metrics           *utils.APIMetrics           // 指标
	Response          *ResponseHelper             // 响应助手
}

// APIResponse 标准API响应格式
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"` // 用于调试和追踪
}

// APIError 标准错误格式
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// HealthStatus 健康检查数据
type HealthStatus struct {
	Status   string `json:"status"`
	Upstream string `json:"upstream"` // configured | fallback
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// NewHandler 创建API处理器
func NewHandler(generationService *services.GenerationService, metrics *utils.APIMetrics) *Handler {
	return &Handler{
		GenerationService: generationService,
		Metrics:           metrics,
		Response:          NewResponseHelper(),
	}
}

// Generate 生成代理接口
// 成功与失败都直接返回结果JSON，不使用标准响应包装
func (h *Handler) Generate(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.GenerationFailedBody{
			Error:   models.GenerationErrorFailed,
			Message: err.Error(),
		})
		return
	}

	resp := h.GenerationService.Respond(c.Request.Context(), body)
	c.JSON(resp.Status, resp.Body)
}

// Health 服务状态
func (h *Handler) Health(c *gin.Context) {
	upstream := "fallback"
	if h.GenerationService.HasCredential() {
		upstream = "configured"
	}

	h.Response.Success(c, HealthStatus{
		Status:   "ok",
		Upstream: upstream,
		Provider: h.GenerationService.ProviderName(),
		Model:    services.GenerationModel,
	})
}
