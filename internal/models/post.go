// internal/models/post.go
package models

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Platform 社交平台标签
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformTwitter   Platform = "twitter"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformYouTube   Platform = "youtube"
)

// AllPlatforms 按界面顺序列出所有平台
var AllPlatforms = []Platform{
	PlatformInstagram,
	PlatformFacebook,
	PlatformTwitter,
	PlatformLinkedIn,
	PlatformYouTube,
}

// ParsePlatform 解析平台名称（不区分大小写）
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(AllPlatforms, p) {
		return p, nil
	}
	return "", fmt.Errorf("未知的平台: %q", s)
}

// PostStatus 帖子生命周期状态
type PostStatus string

const (
	StatusIdeation  PostStatus = "ideation"
	StatusDraft     PostStatus = "draft"
	StatusApproved  PostStatus = "approved"
	StatusScheduled PostStatus = "scheduled"
	StatusPublished PostStatus = "published"
)

var allStatuses = []PostStatus{StatusIdeation, StatusDraft, StatusApproved, StatusScheduled, StatusPublished}

// ParsePostStatus 解析状态名称
func ParsePostStatus(s string) (PostStatus, error) {
	st := PostStatus(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(allStatuses, st) {
		return st, nil
	}
	return "", fmt.Errorf("未知的状态: %q", s)
}

// ScheduledPost 已保存的帖子
// 状态为scheduled时ScheduledAt也可能为空，不做校验
type ScheduledPost struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Copy        string     `json:"copy"`
	Hashtags    []string   `json:"hashtags"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	Platforms   []Platform `json:"platforms"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty"`
	Status      PostStatus `json:"status"`
}

// Draft 正在编辑、尚未保存到列表中的帖子
type Draft = ScheduledPost

// DefaultDraftPlatforms 新草稿默认勾选的平台
var DefaultDraftPlatforms = []Platform{PlatformInstagram, PlatformFacebook, PlatformLinkedIn}

// NewPostID 生成帖子ID
func NewPostID() string {
	return uuid.NewString()
}

// NewDraft 创建空白草稿；platforms为nil时使用默认平台
func NewDraft(platforms []Platform) Draft {
	if platforms == nil {
		platforms = DefaultDraftPlatforms
	}
	return Draft{
		ID:        NewPostID(),
		Hashtags:  []string{},
		Platforms: slices.Clone(platforms),
		Status:    StatusIdeation,
	}
}

// Context 提取用于生成提示词的草稿上下文
func (p ScheduledPost) Context() DraftContext {
	return DraftContext{
		Title:     p.Title,
		Copy:      p.Copy,
		Platforms: slices.Clone(p.Platforms),
	}
}

// HasPlatform 判断帖子是否包含某平台
func (p ScheduledPost) HasPlatform(platform Platform) bool {
	return slices.Contains(p.Platforms, platform)
}

// Workspace 导出/导入文件的内容
type Workspace struct {
	Brand *BrandProfile   `json:"brand,omitempty"`
	Posts []ScheduledPost `json:"posts"`
}

// CalendarDay 日历中的一天
type CalendarDay struct {
	Date  time.Time       `json:"date"`
	Posts []ScheduledPost `json:"posts"`
}

// CalendarMonth 月视图
type CalendarMonth struct {
	Month time.Time     `json:"month"`
	Days  []CalendarDay `json:"days"`
}
