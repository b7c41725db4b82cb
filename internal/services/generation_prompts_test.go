package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Corphon/ContentPlannerMCP/internal/models"
)

func TestParseHashtags(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{name: "comma separated", content: "#A, #B,C", want: []string{"#A", "#B", "#C"}},
		{name: "json array verbatim", content: `["x","y","z"]`, want: []string{"x", "y", "z"}},
		{name: "json array keeps hash", content: `["#Care", "Wellness"]`, want: []string{"#Care", "Wellness"}},
		{name: "json non-string items", content: `["a", 1, true]`, want: []string{"a", "1", "true"}},
		{name: "json object", content: `{"hashtags":["#A"]}`, want: []string{}},
		{name: "json string", content: `"#A #B"`, want: []string{}},
		{name: "newlines", content: "#Health\n#Care\n\n#Trust", want: []string{"#Health", "#Care", "#Trust"}},
		{name: "empty", content: "", want: []string{}},
		{name: "only separators", content: "#, ,\n#", want: []string{}},
		{name: "inner spaces kept", content: "#Heart Health, #Care", want: []string{"#Heart Health", "#Care"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseHashtags(tt.content)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseHashtags_CapsAtTwelve(t *testing.T) {
	items := make([]string, 20)
	for i := range items {
		items[i] = `"t` + string(rune('a'+i)) + `"`
	}

	fromJSON := ParseHashtags("[" + strings.Join(items, ",") + "]")
	assert.Len(t, fromJSON, MaxHashtags)
	assert.Equal(t, "ta", fromJSON[0])

	var text []string
	for i := 0; i < 20; i++ {
		text = append(text, "#tag"+string(rune('a'+i)))
	}
	fromText := ParseHashtags(strings.Join(text, " "))
	assert.Len(t, fromText, MaxHashtags)
	assert.Equal(t, "#taga", fromText[0])
}

func TestBuildSystemPrompt_Defaults(t *testing.T) {
	prompt := buildSystemPrompt(models.BrandProfile{})

	assert.Equal(t,
		"You are a seasoned healthcare brand social media strategist for a healthcare org. Tone: trustworthy. Audience: patients and families in India. Keywords: . Keep content culturally sensitive to India.",
		prompt)
}

func TestBuildPostPrompt(t *testing.T) {
	prompt := buildPostPrompt(
		models.BrandProfile{Name: "Acme"},
		models.DraftContext{Platforms: []models.Platform{models.PlatformFacebook, models.PlatformYouTube}},
	)

	assert.Equal(t,
		"Write a concise, high-engagement social media post (70-120 words) for Acme. Platforms: facebook, youtube. Title: Health & Wellness. Include a natural CTA. Avoid medical claims. Return plain text body; no markdown.",
		prompt)
}

func TestBuildHashtagsPrompt(t *testing.T) {
	prompt := buildHashtagsPrompt(models.DraftContext{Title: "Flu Season"})

	assert.Equal(t,
		`Suggest 8-12 concise, non-repetitive, Indian audience-friendly hashtags for a post about: "Flu Season". Avoid banned or misleading tags. Return as a JSON array of strings.`,
		prompt)
}

// 空字符串与缺省字段一样使用默认文本
func TestBuildPrompts_EmptyValuesUseDefaults(t *testing.T) {
	draft := models.DraftContext{Title: ""}

	assert.Contains(t, buildHashtagsPrompt(draft), `for a post about: "healthcare".`)
	assert.Contains(t, buildPostPrompt(models.BrandProfile{Name: "Acme"}, draft), "Title: Health & Wellness.")
	assert.Contains(t, buildSystemPrompt(models.BrandProfile{Name: "", Tone: ""}), "strategist for a healthcare org. Tone: trustworthy.")
}
