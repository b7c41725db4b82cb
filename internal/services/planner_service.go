// internal/services/planner_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	apperrors "github.com/Corphon/ContentPlannerMCP/internal/errors"
	"github.com/Corphon/ContentPlannerMCP/internal/models"
	"github.com/Corphon/ContentPlannerMCP/internal/storage"
	"github.com/Corphon/ContentPlannerMCP/internal/utils"
)

// ErrInvalidImport 导入文件不是合法JSON
var ErrInvalidImport = errors.New("Invalid JSON file.")

// UntitledPost 保存时标题为空的替代值
const UntitledPost = "Untitled"

// ExportFilePrefix 导出文件名前缀
const ExportFilePrefix = "bharat-life-care-social-"

// ExportFile 导出结果
type ExportFile struct {
	Name string
	Data []byte
}

// ImportResult 导入结果
type ImportResult struct {
	BrandReplaced bool
	PostsReplaced bool
	PostCount     int
}

// PlannerService 品牌、草稿、帖子列表与日历
type PlannerService struct {
	store  storage.Store
	logger *utils.Logger
	mu     sync.Mutex
}

// NewPlannerService 创建规划服务
func NewPlannerService(store storage.Store, logger *utils.Logger) *PlannerService {
	if logger == nil {
		logger = utils.GetLogger()
	}
	return &PlannerService{store: store, logger: logger}
}

// Brand 返回当前品牌设定
func (s *PlannerService) Brand(ctx context.Context) (models.BrandProfile, error) {
	return s.store.LoadBrand(ctx)
}

// UpdateBrand 修改品牌设定并保存
func (s *PlannerService) UpdateBrand(ctx context.Context, fn func(*models.BrandProfile)) (models.BrandProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	brand, err := s.store.LoadBrand(ctx)
	if err != nil {
		return models.BrandProfile{}, err
	}
	fn(&brand)
	brand = brand.Normalize()
	if err := s.store.SaveBrand(ctx, brand); err != nil {
		return models.BrandProfile{}, err
	}
	return brand, nil
}

// SetKeywords 用逗号分隔的输入替换关键词
func (s *PlannerService) SetKeywords(ctx context.Context, csv string) (models.BrandProfile, error) {
	return s.UpdateBrand(ctx, func(b *models.BrandProfile) {
		b.Keywords = models.ParseKeywords(csv)
	})
}

// Draft 返回当前草稿
func (s *PlannerService) Draft(ctx context.Context) (models.Draft, error) {
	return s.store.LoadDraft(ctx)
}

// UpdateDraft 修改草稿并保存
func (s *PlannerService) UpdateDraft(ctx context.Context, fn func(*models.Draft)) (models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, err := s.store.LoadDraft(ctx)
	if err != nil {
		return models.Draft{}, err
	}
	fn(&draft)
	if err := s.store.SaveDraft(ctx, draft); err != nil {
		return models.Draft{}, err
	}
	return draft, nil
}

// TogglePlatform 勾选或取消草稿的平台
func (s *PlannerService) TogglePlatform(ctx context.Context, platform models.Platform) (models.Draft, error) {
	return s.UpdateDraft(ctx, func(d *models.Draft) {
		if d.HasPlatform(platform) {
			d.Platforms = slices.DeleteFunc(slices.Clone(d.Platforms), func(p models.Platform) bool {
				return p == platform
			})
			return
		}
		d.Platforms = append(slices.Clone(d.Platforms), platform)
	})
}

// SetSchedule 设置或清除（nil）草稿的排期时间
func (s *PlannerService) SetSchedule(ctx context.Context, at *time.Time) (models.Draft, error) {
	return s.UpdateDraft(ctx, func(d *models.Draft) {
		if at == nil {
			d.ScheduledAt = nil
			return
		}
		t := *at
		d.ScheduledAt = &t
	})
}

// ClearDraft 丢弃当前草稿，保留平台选择
func (s *PlannerService) ClearDraft(ctx context.Context) (models.Draft, error) {
	return s.UpdateDraft(ctx, func(d *models.Draft) {
		*d = models.NewDraft(d.Platforms)
	})
}

// SaveDraft 以指定状态保存草稿：已存在的ID原位替换，否则插入列表头部；随后重置草稿
func (s *PlannerService) SaveDraft(ctx context.Context, status models.PostStatus) (models.ScheduledPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, err := s.store.LoadDraft(ctx)
	if err != nil {
		return models.ScheduledPost{}, err
	}
	posts, err := s.store.LoadPosts(ctx)
	if err != nil {
		return models.ScheduledPost{}, err
	}

	toSave := models.ScheduledPost{
		ID:          draft.ID,
		Title:       strings.TrimSpace(draft.Title),
		Copy:        strings.TrimSpace(draft.Copy),
		Hashtags:    draft.Hashtags,
		ImageURL:    draft.ImageURL,
		Platforms:   draft.Platforms,
		ScheduledAt: draft.ScheduledAt,
		Status:      status,
	}
	if toSave.ID == "" {
		toSave.ID = models.NewPostID()
	}
	if toSave.Title == "" {
		toSave.Title = UntitledPost
	}
	if toSave.Hashtags == nil {
		toSave.Hashtags = []string{}
	}
	if toSave.Platforms == nil {
		toSave.Platforms = []models.Platform{models.PlatformInstagram}
	}

	idx := slices.IndexFunc(posts, func(p models.ScheduledPost) bool { return p.ID == toSave.ID })
	if idx >= 0 {
		posts[idx] = toSave
	} else {
		posts = append([]models.ScheduledPost{toSave}, posts...)
	}

	if err := s.store.SavePosts(ctx, posts); err != nil {
		return models.ScheduledPost{}, err
	}
	if err := s.store.SaveDraft(ctx, models.NewDraft(draft.Platforms)); err != nil {
		return models.ScheduledPost{}, err
	}

	s.logger.Info("帖子已保存",
		utils.String("id", toSave.ID),
		utils.String("status", string(status)),
		utils.Bool("replaced", idx >= 0))
	return toSave, nil
}

// Posts 返回已保存的帖子
func (s *PlannerService) Posts(ctx context.Context) ([]models.ScheduledPost, error) {
	return s.store.LoadPosts(ctx)
}

// OpenPost 把已保存的帖子载入草稿以便继续编辑
func (s *PlannerService) OpenPost(ctx context.Context, id string) (models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.store.LoadPosts(ctx)
	if err != nil {
		return models.Draft{}, err
	}
	idx := slices.IndexFunc(posts, func(p models.ScheduledPost) bool { return p.ID == id })
	if idx < 0 {
		return models.Draft{}, apperrors.NewNotFoundError(fmt.Sprintf("帖子不存在: %s", id), nil)
	}

	draft := posts[idx]
	if err := s.store.SaveDraft(ctx, draft); err != nil {
		return models.Draft{}, err
	}
	return draft, nil
}

// DeletePost 删除已保存的帖子
func (s *PlannerService) DeletePost(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.store.LoadPosts(ctx)
	if err != nil {
		return err
	}
	remaining := slices.DeleteFunc(slices.Clone(posts), func(p models.ScheduledPost) bool { return p.ID == id })
	if len(remaining) == len(posts) {
		return apperrors.NewNotFoundError(fmt.Sprintf("帖子不存在: %s", id), nil)
	}
	return s.store.SavePosts(ctx, remaining)
}

// Calendar 返回now所在月份偏移monthOffset个月后的月视图，按now的时区划分日期
func (s *PlannerService) Calendar(ctx context.Context, now time.Time, monthOffset int) (models.CalendarMonth, error) {
	posts, err := s.store.LoadPosts(ctx)
	if err != nil {
		return models.CalendarMonth{}, err
	}
	return BuildCalendar(posts, now, monthOffset), nil
}

// BuildCalendar 按日分组帖子，没有排期时间的帖子不出现在日历中
func BuildCalendar(posts []models.ScheduledPost, now time.Time, monthOffset int) models.CalendarMonth {
	loc := now.Location()
	start := time.Date(now.Year(), now.Month()+time.Month(monthOffset), 1, 0, 0, 0, 0, loc)
	next := start.AddDate(0, 1, 0)

	month := models.CalendarMonth{Month: start}
	for day := start; day.Before(next); day = day.AddDate(0, 0, 1) {
		month.Days = append(month.Days, models.CalendarDay{Date: day, Posts: []models.ScheduledPost{}})
	}

	for _, p := range posts {
		if p.ScheduledAt == nil {
			continue
		}
		at := p.ScheduledAt.In(loc)
		if at.Year() != start.Year() || at.Month() != start.Month() {
			continue
		}
		d := &month.Days[at.Day()-1]
		d.Posts = append(d.Posts, p)
	}
	return month
}

// Export 生成包含品牌与帖子的导出文件
func (s *PlannerService) Export(ctx context.Context, now time.Time) (ExportFile, error) {
	brand, err := s.store.LoadBrand(ctx)
	if err != nil {
		return ExportFile{}, err
	}
	posts, err := s.store.LoadPosts(ctx)
	if err != nil {
		return ExportFile{}, err
	}

	data, err := json.MarshalIndent(models.Workspace{Brand: &brand, Posts: posts}, "", "  ")
	if err != nil {
		return ExportFile{}, apperrors.NewProcessingError("序列化导出数据失败", err)
	}
	return ExportFile{
		Name: fmt.Sprintf("%s%d.json", ExportFilePrefix, now.UnixMilli()),
		Data: data,
	}, nil
}

// Import 导入文件：存在brand时替换品牌，posts为数组时替换帖子列表
func (s *PlannerService) Import(ctx context.Context, data []byte) (ImportResult, error) {
	if !json.Valid(data) {
		return ImportResult{}, ErrInvalidImport
	}
	// 合法JSON但不是对象时没有可导入的字段
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return ImportResult{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var result ImportResult
	if raw, ok := doc["brand"]; ok && isTruthyJSON(raw) {
		var brand models.BrandProfile
		if err := json.Unmarshal(raw, &brand); err != nil {
			return ImportResult{}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
		}
		if err := s.store.SaveBrand(ctx, brand); err != nil {
			return ImportResult{}, err
		}
		result.BrandReplaced = true
	}

	if raw, ok := doc["posts"]; ok && bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
		var posts []models.ScheduledPost
		if err := json.Unmarshal(raw, &posts); err != nil {
			return ImportResult{}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
		}
		if err := s.store.SavePosts(ctx, posts); err != nil {
			return ImportResult{}, err
		}
		result.PostsReplaced = true
		result.PostCount = len(posts)
	}

	s.logger.Info("导入完成",
		utils.Bool("brand_replaced", result.BrandReplaced),
		utils.Bool("posts_replaced", result.PostsReplaced),
		utils.Int("post_count", result.PostCount))
	return result, nil
}

func isTruthyJSON(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", "false", "0", `""`:
		return false
	}
	return true
}
