// internal/trigger/trigger.go
package trigger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/Corphon/ContentPlannerMCP/internal/models"
	"github.com/Corphon/ContentPlannerMCP/internal/utils"
)

// GeneratePath 代理接口路径
const GeneratePath = "/api/generate"

// FallbackNotice 生成失败时提示用户的文字
const FallbackNotice = "Generation failed. Using a smart fallback."

// FallbackHashtags 本地兜底话题标签
var FallbackHashtags = []string{"#BharatLifeCare", "#Healthcare", "#Wellness", "#Diagnostics", "#PatientCare"}

// ErrGenerationInProgress 同类请求尚未完成
var ErrGenerationInProgress = errors.New("generation already in progress")

// Notifier 向用户展示提示
type Notifier interface {
	Notify(message string)
}

// NotifierFunc 函数适配器
type NotifierFunc func(message string)

// Notify 实现Notifier
func (f NotifierFunc) Notify(message string) { f(message) }

// Source 合并内容的来源
type Source string

const (
	SourceProxy    Source = "proxy"
	SourceFallback Source = "fallback"
)

// Result 一次触发的结果
type Result struct {
	Kind   models.GenerationKind
	Source Source
	// Response 代理返回的响应体，兜底时为nil
	Response *models.GenerationResponse
	// Err 导致兜底的错误，仅用于记录
	Err error
}

// Trigger 把品牌与草稿上下文发送给生成代理，并把结果合并进草稿
type Trigger struct {
	endpoint string
	client   *http.Client
	notifier Notifier
	logger   *utils.Logger

	inflightMu sync.Mutex
	inflight   map[models.GenerationKind]bool

	mergeMu sync.Mutex
}

// Option 触发器配置
type Option func(*Trigger)

// WithHTTPClient 替换HTTP客户端
func WithHTTPClient(client *http.Client) Option {
	return func(t *Trigger) {
		if client != nil {
			t.client = client
		}
	}
}

// WithNotifier 设置提示方式
func WithNotifier(n Notifier) Option {
	return func(t *Trigger) {
		if n != nil {
			t.notifier = n
		}
	}
}

// WithLogger 设置日志
func WithLogger(logger *utils.Logger) Option {
	return func(t *Trigger) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// New 创建触发器，serverURL为代理服务地址
func New(serverURL string, opts ...Option) *Trigger {
	t := &Trigger{
		endpoint: strings.TrimRight(serverURL, "/") + GeneratePath,
		client:   &http.Client{},
		notifier: NotifierFunc(func(string) {}),
		logger:   utils.GetLogger(),
		inflight: make(map[models.GenerationKind]bool),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Endpoint 返回代理接口完整地址
func (t *Trigger) Endpoint() string {
	return t.endpoint
}

// InProgress 报告某类请求是否正在进行
func (t *Trigger) InProgress(kind models.GenerationKind) bool {
	t.inflightMu.Lock()
	defer t.inflightMu.Unlock()
	return t.inflight[kind]
}

// Generate 发起一次生成并把结果合并进draft
// 传输失败或响应不是JSON时合并本地兜底内容，不向调用方返回该错误
func (t *Trigger) Generate(ctx context.Context, kind models.GenerationKind, brand models.BrandProfile, draft *models.Draft) (Result, error) {
	if draft == nil {
		return Result{}, fmt.Errorf("草稿不能为空")
	}
	if !t.acquire(kind) {
		return Result{}, ErrGenerationInProgress
	}
	defer t.release(kind)

	t.mergeMu.Lock()
	reqCtx := draft.Context()
	t.mergeMu.Unlock()

	resp, err := t.request(ctx, models.GenerationRequest{
		Brand:   brand,
		Kind:    string(kind),
		Context: reqCtx,
	})
	if err != nil {
		t.logger.Error("生成请求失败，使用本地兜底内容",
			utils.String("kind", string(kind)), utils.Err(err))
		t.notifier.Notify(FallbackNotice)
		t.mergeFallback(kind, brand, draft)
		return Result{Kind: kind, Source: SourceFallback, Err: err}, nil
	}

	if resp.Error != "" {
		t.logger.Warn("生成代理返回错误响应",
			utils.String("kind", string(kind)),
			utils.String("error", resp.Error),
			utils.String("detail", resp.Detail),
			utils.String("message", resp.Message))
	}
	t.mergeResponse(kind, resp, draft)
	return Result{Kind: kind, Source: SourceProxy, Response: resp}, nil
}

func (t *Trigger) acquire(kind models.GenerationKind) bool {
	t.inflightMu.Lock()
	defer t.inflightMu.Unlock()
	if t.inflight[kind] {
		return false
	}
	t.inflight[kind] = true
	return true
}

func (t *Trigger) release(kind models.GenerationKind) {
	t.inflightMu.Lock()
	defer t.inflightMu.Unlock()
	delete(t.inflight, kind)
}

// request 发送请求并解析JSON响应体，状态码不参与判断
func (t *Trigger) request(ctx context.Context, payload models.GenerationRequest) (*models.GenerationResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求生成代理失败: %w", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	var resp models.GenerationResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("解析响应失败(status %d): %w", httpResp.StatusCode, err)
	}
	return &resp, nil
}

// mergeResponse 按原样写入响应字段，缺失的文本字段为空字符串
func (t *Trigger) mergeResponse(kind models.GenerationKind, resp *models.GenerationResponse, draft *models.Draft) {
	t.mergeMu.Lock()
	defer t.mergeMu.Unlock()

	if kind == models.KindHashtags {
		if resp.Hashtags != nil {
			draft.Hashtags = append([]string(nil), resp.Hashtags...)
		} else {
			draft.Hashtags = []string{}
		}
		return
	}
	draft.Title = deref(resp.Title)
	draft.Copy = deref(resp.Copy)
}

func (t *Trigger) mergeFallback(kind models.GenerationKind, brand models.BrandProfile, draft *models.Draft) {
	t.mergeMu.Lock()
	defer t.mergeMu.Unlock()

	if kind == models.KindHashtags {
		draft.Hashtags = append([]string(nil), FallbackHashtags...)
		return
	}
	draft.Copy = FallbackPostCopy(brand.Name)
}

// FallbackPostCopy 本地兜底文案
func FallbackPostCopy(brandName string) string {
	return fmt.Sprintf("Caring for every heartbeat. At %s, your wellness is our priority. #Health #Care", brandName)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
