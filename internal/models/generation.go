// internal/models/generation.go
package models

import (
	"encoding/json"
	"strconv"
)

// GenerationKind 生成类型
type GenerationKind string

const (
	KindPost     GenerationKind = "post"
	KindHashtags GenerationKind = "hashtags"
)

// ParseKind "hashtags"以外的任何值都按post处理
func ParseKind(s string) GenerationKind {
	if s == string(KindHashtags) {
		return KindHashtags
	}
	return KindPost
}

// DraftContext 生成提示词所需的草稿上下文
type DraftContext struct {
	Title     string     `json:"title"`
	Copy      string     `json:"copy"`
	Platforms []Platform `json:"platforms"`
}

// GenerationRequest /api/generate 请求体
type GenerationRequest struct {
	Brand   BrandProfile `json:"brand"`
	Kind    string       `json:"kind"`
	Context DraftContext `json:"context"`
}

// DecodeGenerationRequest 宽松解析请求体，只有非法JSON才返回错误
// 请求体不是对象时按空请求处理；类型不符的字段按缺省处理，kind不是字符串时即为post
func DecodeGenerationRequest(raw []byte) (GenerationRequest, error) {
	var body interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		return GenerationRequest{}, err
	}

	fields := objectValue(body)
	brand := objectValue(fields["brand"])
	draft := objectValue(fields["context"])

	req := GenerationRequest{
		Brand: BrandProfile{
			Name:     textValue(brand["name"]),
			Tone:     textValue(brand["tone"]),
			Audience: textValue(brand["audience"]),
			Keywords: textList(brand["keywords"]),
		},
		Context: DraftContext{
			Title: textValue(draft["title"]),
			Copy:  textValue(draft["copy"]),
		},
	}
	if kind, ok := fields["kind"].(string); ok {
		req.Kind = kind
	}
	for _, p := range textList(draft["platforms"]) {
		req.Context.Platforms = append(req.Context.Platforms, Platform(p))
	}
	return req, nil
}

func objectValue(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

// textValue 字符串原样返回，非零数字与true转为文本，其余视为缺省
func textValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == 0 {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "true"
		}
	}
	return ""
}

// textList 非数组返回nil，数组中无法转为文本的项被丢弃
func textList(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	list := make([]string, 0, len(items))
	for _, item := range items {
		if text := textValue(item); text != "" {
			list = append(list, text)
		}
	}
	return list
}

// PostResult 文案生成结果
type PostResult struct {
	Title string `json:"title"`
	Copy  string `json:"copy"`
}

// HashtagResult 话题标签生成结果
type HashtagResult struct {
	Hashtags []string `json:"hashtags"`
}

// GenerationResponse 客户端视角的响应体，成功与失败字段合并在一起
type GenerationResponse struct {
	Title    *string  `json:"title,omitempty"`
	Copy     *string  `json:"copy,omitempty"`
	Hashtags []string `json:"hashtags,omitempty"`
	Error    string   `json:"error,omitempty"`
	Detail   string   `json:"detail,omitempty"`
	Message  string   `json:"message,omitempty"`
}

// 生成失败的错误代码
const (
	GenerationErrorUpstream = "upstream_error"
	GenerationErrorFailed   = "generation_failed"
)

// UpstreamErrorBody 上游返回非2xx时的响应体
type UpstreamErrorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// GenerationFailedBody 其他失败的响应体
type GenerationFailedBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
