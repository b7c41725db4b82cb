// internal/storage/store.go
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	apperrors "github.com/Corphon/ContentPlannerMCP/internal/errors"
	"github.com/Corphon/ContentPlannerMCP/internal/models"
)

// 固定的存储键，与浏览器版本的localStorage键保持一致
const (
	KeyPosts = "blc_posts_v1"
	KeyBrand = "blc_brand_v1"
	KeyDraft = "blc_draft_v1"
)

// 存储驱动
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Store 规划工具的持久化接口
type Store interface {
	LoadBrand(ctx context.Context) (models.BrandProfile, error)
	SaveBrand(ctx context.Context, brand models.BrandProfile) error
	LoadPosts(ctx context.Context) ([]models.ScheduledPost, error)
	SavePosts(ctx context.Context, posts []models.ScheduledPost) error
	LoadDraft(ctx context.Context) (models.Draft, error)
	SaveDraft(ctx context.Context, draft models.Draft) error
	Close() error
}

// KeyValueStore 底层键值存储
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// DocumentStore 以JSON文档形式把规划数据写入键值存储
type DocumentStore struct {
	kv KeyValueStore
}

// NewDocumentStore 创建文档存储
func NewDocumentStore(kv KeyValueStore) *DocumentStore {
	return &DocumentStore{kv: kv}
}

// Open 按驱动打开存储，数据位于dir下
func Open(driver, dir string) (Store, error) {
	var (
		kv  KeyValueStore
		err error
	)
	switch driver {
	case DriverFile, "":
		kv, err = NewFileStorage(dir)
	case DriverSQLite:
		kv, err = NewSQLiteStorage(filepath.Join(dir, "planner.db"))
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("未知的存储驱动: %s", driver), nil)
	}
	if err != nil {
		return nil, err
	}
	return NewDocumentStore(kv), nil
}

// LoadBrand 读取品牌设定，不存在时返回默认值
func (s *DocumentStore) LoadBrand(ctx context.Context) (models.BrandProfile, error) {
	brand := models.DefaultBrandProfile()
	if _, err := s.load(ctx, KeyBrand, &brand); err != nil {
		return models.BrandProfile{}, err
	}
	return brand.Normalize(), nil
}

// SaveBrand 保存品牌设定
func (s *DocumentStore) SaveBrand(ctx context.Context, brand models.BrandProfile) error {
	return s.save(ctx, KeyBrand, brand.Normalize())
}

// LoadPosts 读取帖子列表，不存在时返回空列表
func (s *DocumentStore) LoadPosts(ctx context.Context) ([]models.ScheduledPost, error) {
	var posts []models.ScheduledPost
	if _, err := s.load(ctx, KeyPosts, &posts); err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []models.ScheduledPost{}
	}
	return posts, nil
}

// SavePosts 整体写回帖子列表
func (s *DocumentStore) SavePosts(ctx context.Context, posts []models.ScheduledPost) error {
	if posts == nil {
		posts = []models.ScheduledPost{}
	}
	return s.save(ctx, KeyPosts, posts)
}

// LoadDraft 读取当前草稿，不存在时创建新草稿
func (s *DocumentStore) LoadDraft(ctx context.Context) (models.Draft, error) {
	var draft models.Draft
	found, err := s.load(ctx, KeyDraft, &draft)
	if err != nil {
		return models.Draft{}, err
	}
	if !found || draft.ID == "" {
		return models.NewDraft(nil), nil
	}
	if draft.Hashtags == nil {
		draft.Hashtags = []string{}
	}
	return draft, nil
}

// SaveDraft 保存当前草稿
func (s *DocumentStore) SaveDraft(ctx context.Context, draft models.Draft) error {
	return s.save(ctx, KeyDraft, draft)
}

// Close 关闭底层存储
func (s *DocumentStore) Close() error {
	return s.kv.Close()
}

func (s *DocumentStore) load(ctx context.Context, key string, v interface{}) (bool, error) {
	data, found, err := s.kv.Get(ctx, key)
	if err != nil {
		return false, apperrors.NewStorageError("读取"+key+"失败", err)
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, apperrors.NewStorageError("解析"+key+"失败", err)
	}
	return true, nil
}

func (s *DocumentStore) save(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return apperrors.NewStorageError("序列化"+key+"失败", err)
	}
	if err := s.kv.Put(ctx, key, data); err != nil {
		return apperrors.NewStorageError("保存"+key+"失败", err)
	}
	return nil
}
