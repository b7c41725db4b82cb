// internal/services/generation_prompts.go
package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Corphon/ContentPlannerMCP/internal/models"
)

// buildSystemPrompt 品牌设定写入系统指令
func buildSystemPrompt(brand models.BrandProfile) string {
	return fmt.Sprintf(
		"You are a seasoned healthcare brand social media strategist for %s. Tone: %s. Audience: %s. Keywords: %s. Keep content culturally sensitive to India.",
		orDefault(brand.Name, "a healthcare org"),
		orDefault(brand.Tone, "trustworthy"),
		orDefault(brand.Audience, "patients and families in India"),
		strings.Join(brand.Keywords, ", "),
	)
}

func buildHashtagsPrompt(draft models.DraftContext) string {
	return fmt.Sprintf(
		"Suggest 8-12 concise, non-repetitive, Indian audience-friendly hashtags for a post about: \"%s\". Avoid banned or misleading tags. Return as a JSON array of strings.",
		orDefault(draft.Title, "healthcare"),
	)
}

func buildPostPrompt(brand models.BrandProfile, draft models.DraftContext) string {
	platforms := make([]string, len(draft.Platforms))
	for i, p := range draft.Platforms {
		platforms[i] = string(p)
	}
	return fmt.Sprintf(
		"Write a concise, high-engagement social media post (70-120 words) for %s. Platforms: %s. Title: %s. Include a natural CTA. Avoid medical claims. Return plain text body; no markdown.",
		brand.Name,
		strings.Join(platforms, ", "),
		orDefault(draft.Title, "Health & Wellness"),
	)
}

// ParseHashtags 规范化模型返回的话题标签
// 合法JSON数组取前12项原样返回；合法JSON但不是数组返回空列表；
// 否则按 # / 换行 / 逗号 拆分，去空白、丢弃空项、取前12项并补全#前缀
func ParseHashtags(content string) []string {
	var parsed interface{}
	if err := json.Unmarshal([]byte(content), &parsed); err == nil {
		items, ok := parsed.([]interface{})
		if !ok {
			return []string{}
		}
		if len(items) > MaxHashtags {
			items = items[:MaxHashtags]
		}
		tags := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				tags = append(tags, s)
				continue
			}
			raw, _ := json.Marshal(item)
			tags = append(tags, string(raw))
		}
		return tags
	}

	return splitHashtags(content)
}

func splitHashtags(content string) []string {
	fields := strings.FieldsFunc(content, func(r rune) bool {
		return r == '#' || r == '\n' || r == ','
	})

	tags := make([]string, 0, MaxHashtags)
	for _, field := range fields {
		tag := strings.TrimSpace(field)
		if tag == "" {
			continue
		}
		if !strings.HasPrefix(tag, "#") {
			tag = "#" + tag
		}
		tags = append(tags, tag)
		if len(tags) == MaxHashtags {
			break
		}
	}
	return tags
}
