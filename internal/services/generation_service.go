// internal/services/generation_service.go
package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Corphon/ContentPlannerMCP/internal/config"
	apperrors "github.com/Corphon/ContentPlannerMCP/internal/errors"
	"github.com/Corphon/ContentPlannerMCP/internal/llm"
	"github.com/Corphon/ContentPlannerMCP/internal/llm/providers/openai"
	"github.com/Corphon/ContentPlannerMCP/internal/models"
	"github.com/Corphon/ContentPlannerMCP/internal/utils"
)

// 生成参数固定
const (
	GenerationModel               = openai.DefaultModel
	GenerationTemperature float32 = 0.8
	MaxHashtags                   = 12
)

// 未配置凭证时的固定内容
const (
	FallbackPostTitle     = "Your Health, Our Priority"
	FallbackPostCopy      = "At our care centers, we combine compassion with advanced diagnostics to support your family's wellness journey. Book your checkup today. #Care #Trust"
	DefaultGeneratedTitle = "Campaign Post"
)

// FallbackHashtags 未配置凭证时返回的话题标签
var FallbackHashtags = []string{"#BharatLifeCare", "#Healthcare", "#Wellness", "#Diagnostics", "#PatientCare"}

// 生成结果分类，用于指标与日志
const (
	outcomeFallback = "fallback"
	outcomeSuccess  = "success"
)

// CredentialSource 返回当前的上游凭证，空字符串表示未配置
type CredentialSource func() string

// GenerationResponse 生成接口的HTTP结果，Body可直接序列化为JSON
type GenerationResponse struct {
	Status int
	Body   interface{}
}

// GenerationService 生成代理：构造提示词、调用上游一次并规范化输出
type GenerationService struct {
	credential   CredentialSource
	baseURL      func() string
	providerName string
	metrics      *utils.APIMetrics
	logger       *utils.Logger
}

// GenerationOption 生成服务的可选配置
type GenerationOption func(*GenerationService)

// WithCredentialSource 替换凭证来源
func WithCredentialSource(source CredentialSource) GenerationOption {
	return func(s *GenerationService) {
		if source != nil {
			s.credential = source
		}
	}
}

// WithBaseURL 固定上游地址
func WithBaseURL(baseURL string) GenerationOption {
	return func(s *GenerationService) {
		s.baseURL = func() string { return baseURL }
	}
}

// WithProviderName 指定注册表中的提供者
func WithProviderName(name string) GenerationOption {
	return func(s *GenerationService) {
		if name != "" {
			s.providerName = name
		}
	}
}

// WithMetrics 记录生成指标
func WithMetrics(metrics *utils.APIMetrics) GenerationOption {
	return func(s *GenerationService) {
		s.metrics = metrics
	}
}

// WithLogger 指定日志
func WithLogger(logger *utils.Logger) GenerationOption {
	return func(s *GenerationService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewGenerationService 创建生成服务，默认从进程环境读取凭证
func NewGenerationService(opts ...GenerationOption) *GenerationService {
	s := &GenerationService{
		credential:   config.OpenAIAPIKey,
		baseURL:      config.OpenAIBaseURL,
		providerName: openai.ProviderName,
		logger:       utils.GetLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HasCredential 报告当前是否配置了上游凭证
func (s *GenerationService) HasCredential() bool {
	return s.credential() != ""
}

// ProviderName 返回上游提供者名称
func (s *GenerationService) ProviderName() string {
	return s.providerName
}

// Respond 处理原始请求体，任何失败都转换为带状态码的JSON响应，不会向调用方返回错误
func (s *GenerationService) Respond(ctx context.Context, rawBody []byte) (resp GenerationResponse) {
	kind := models.KindPost

	defer func() {
		if r := recover(); r != nil {
			resp = s.failed(kind, fmt.Errorf("%v", r))
		}
	}()

	req, err := models.DecodeGenerationRequest(rawBody)
	if err != nil {
		return s.failed(kind, err)
	}
	kind = models.ParseKind(req.Kind)

	var result interface{}
	switch kind {
	case models.KindHashtags:
		result, err = s.GenerateHashtags(ctx, req.Brand, req.Context)
	default:
		result, err = s.GeneratePost(ctx, req.Brand, req.Context)
	}
	if err != nil {
		return s.failed(kind, err)
	}

	return GenerationResponse{Status: http.StatusOK, Body: result}
}

// GeneratePost 生成帖子文案
func (s *GenerationService) GeneratePost(ctx context.Context, brand models.BrandProfile, draft models.DraftContext) (models.PostResult, error) {
	apiKey := s.credential()
	if apiKey == "" {
		s.recordGeneration(models.KindPost, outcomeFallback)
		return models.PostResult{
			Title: orDefault(draft.Title, FallbackPostTitle),
			Copy:  FallbackPostCopy,
		}, nil
	}

	content, err := s.complete(ctx, apiKey, buildSystemPrompt(brand), buildPostPrompt(brand, draft))
	if err != nil {
		return models.PostResult{}, err
	}

	s.recordGeneration(models.KindPost, outcomeSuccess)
	return models.PostResult{
		Title: orDefault(draft.Title, DefaultGeneratedTitle),
		Copy:  strings.TrimSpace(content),
	}, nil
}

// GenerateHashtags 生成话题标签
func (s *GenerationService) GenerateHashtags(ctx context.Context, brand models.BrandProfile, draft models.DraftContext) (models.HashtagResult, error) {
	apiKey := s.credential()
	if apiKey == "" {
		s.recordGeneration(models.KindHashtags, outcomeFallback)
		return models.HashtagResult{Hashtags: append([]string(nil), FallbackHashtags...)}, nil
	}

	content, err := s.complete(ctx, apiKey, buildSystemPrompt(brand), buildHashtagsPrompt(draft))
	if err != nil {
		return models.HashtagResult{}, err
	}

	s.recordGeneration(models.KindHashtags, outcomeSuccess)
	return models.HashtagResult{Hashtags: ParseHashtags(content)}, nil
}

// complete 调用上游一次并返回第一条结果的文本
func (s *GenerationService) complete(ctx context.Context, apiKey, systemPrompt, prompt string) (string, error) {
	providerConfig := map[string]string{
		"api_key":       apiKey,
		"default_model": GenerationModel,
	}
	if baseURL := s.baseURL(); baseURL != "" {
		providerConfig["base_url"] = baseURL
	}

	provider, err := llm.GetProvider(s.providerName, providerConfig)
	if err != nil {
		return "", fmt.Errorf("初始化LLM提供者失败: %w", err)
	}

	start := time.Now()
	resp, err := provider.CompleteText(ctx, llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		Prompt:       prompt,
		Model:        GenerationModel,
		Temperature:  GenerationTemperature,
	})
	if s.metrics != nil {
		result := outcomeSuccess
		if err != nil {
			result = "error"
		}
		s.metrics.RecordLLMRequest(s.providerName, GenerationModel, result, time.Since(start))
	}
	if err != nil {
		return "", err
	}

	s.logger.Debug("上游生成完成",
		utils.String("provider", resp.ProviderName),
		utils.Int("tokens_used", resp.TokensUsed),
		utils.Duration("elapsed", time.Since(start)))
	return resp.Text, nil
}

// classifyGenerationError 上游非2xx为upstream_error，其余均为generation_failed
func classifyGenerationError(err error) *apperrors.AppError {
	if upstreamErr, ok := llm.AsUpstreamError(err); ok {
		return apperrors.NewUpstreamError(upstreamErr.Body, err)
	}

	message := "unknown"
	if err != nil && err.Error() != "" {
		message = err.Error()
	}
	return apperrors.NewGenerationFailedError(message, err)
}

// failed 把错误转换为500响应体
func (s *GenerationService) failed(kind models.GenerationKind, err error) GenerationResponse {
	appErr := classifyGenerationError(err)

	s.recordGeneration(kind, appErr.Code)
	if s.metrics != nil {
		s.metrics.RecordError(string(appErr.Type), "generation")
	}
	s.logger.Error("生成请求失败",
		utils.String("kind", string(kind)),
		utils.String("code", appErr.Code),
		utils.Err(appErr.Err))

	resp := GenerationResponse{Status: http.StatusInternalServerError}
	if appErr.Type == apperrors.ErrorTypeUpstream {
		resp.Body = models.UpstreamErrorBody{Error: appErr.Code, Detail: appErr.Message}
	} else {
		resp.Body = models.GenerationFailedBody{Error: appErr.Code, Message: appErr.Message}
	}
	return resp
}

func (s *GenerationService) recordGeneration(kind models.GenerationKind, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordGeneration(string(kind), outcome)
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
