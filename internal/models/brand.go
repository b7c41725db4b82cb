// internal/models/brand.go
package models

import "strings"

// BrandProfile 品牌设定，用于生成提示词
type BrandProfile struct {
	Name     string   `json:"name"`
	Tone     string   `json:"tone"`
	Audience string   `json:"audience"`
	Keywords []string `json:"keywords"`
}

// DefaultBrandProfile 返回首次使用时的品牌设定
func DefaultBrandProfile() BrandProfile {
	return BrandProfile{
		Name:     "Bharat Life Care",
		Tone:     "Empathetic, informative, trustworthy",
		Audience: "Patients, families, and healthcare professionals in India",
		Keywords: []string{"healthcare", "wellness", "diagnostics", "trust", "care"},
	}
}

// Normalize 保证关键词列表非nil
func (b BrandProfile) Normalize() BrandProfile {
	if b.Keywords == nil {
		b.Keywords = []string{}
	}
	return b
}

// ParseKeywords 解析逗号分隔的关键词输入
func ParseKeywords(input string) []string {
	parts := strings.Split(input, ",")
	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		if kw := strings.TrimSpace(part); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}
