// internal/llm/providers/openai/openai.go
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Corphon/ContentPlannerMCP/internal/llm"
)

const (
	ProviderName   = "openai"
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
)

func init() {
	llm.Register(ProviderName, func() llm.Provider {
		return &Provider{baseURL: DefaultBaseURL}
	})
}

// Provider OpenAI chat/completions 接口
type Provider struct {
	apiKey       string
	baseURL      string
	client       *http.Client
	defaultModel string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float32       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message *struct {
			Content *string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

func (p *Provider) Initialize(config map[string]string) error {
	apiKey := config["api_key"]
	if apiKey == "" {
		return errors.New("OpenAI API密钥未提供")
	}
	p.apiKey = apiKey

	// 不设置超时，调用时长由调用方的context决定
	p.client = &http.Client{}

	if model := config["default_model"]; model != "" {
		p.defaultModel = model
	} else {
		p.defaultModel = DefaultModel
	}

	if baseURL := config["base_url"]; baseURL != "" {
		p.baseURL = strings.TrimRight(baseURL, "/")
	}
	return nil
}

func (p *Provider) GetName() string {
	return "OpenAI"
}

func (p *Provider) CompleteText(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	messages := []chatMessage{{Role: llm.RoleUser, Content: req.Prompt}}
	if req.SystemPrompt != "" {
		messages = append([]chatMessage{{Role: llm.RoleSystem, Content: req.SystemPrompt}}, messages...)
	}

	jsonData, err := json.Marshal(chatRequest{
		Model:       model,
		Temperature: req.Temperature,
		Messages:    messages,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		body, readErr := io.ReadAll(httpResp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("读取上游错误响应失败: %w", readErr)
		}
		return nil, &llm.UpstreamError{
			Provider:   p.GetName(),
			StatusCode: httpResp.StatusCode,
			Body:       string(body),
		}
	}

	var response chatResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("解析OpenAI响应失败: %w", err)
	}

	// 没有结果时按空文本处理
	result := &llm.CompletionResponse{
		ModelName:    response.Model,
		TokensUsed:   response.Usage.TotalTokens,
		ProviderName: p.GetName(),
	}
	if len(response.Choices) > 0 {
		choice := response.Choices[0]
		result.FinishReason = choice.FinishReason
		if choice.Message != nil && choice.Message.Content != nil {
			result.Text = *choice.Message.Content
		}
	}
	return result, nil
}
