// internal/app/app.go
package app

import (
	"fmt"
	"os"

	"github.com/Corphon/ContentPlannerMCP/internal/config"
	"github.com/Corphon/ContentPlannerMCP/internal/di"
	apperrors "github.com/Corphon/ContentPlannerMCP/internal/errors"
	"github.com/Corphon/ContentPlannerMCP/internal/services"
	"github.com/Corphon/ContentPlannerMCP/internal/storage"
	"github.com/Corphon/ContentPlannerMCP/internal/trigger"
	"github.com/Corphon/ContentPlannerMCP/internal/utils"
)

// InitServices 按依赖顺序初始化代理服务并注册到全局容器
func InitServices() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	return RegisterServices(di.GetContainer(), cfg)
}

// RegisterServices 把代理服务注册到指定容器
func RegisterServices(container *di.Container, cfg *config.Config) error {
	container.Register("config", cfg)

	// 1. 指标
	metrics := utils.NewAPIMetrics()
	container.Register("metrics", metrics)

	// 2. 生成代理，凭证在每次请求时从进程配置读取
	generation := services.NewGenerationService(
		services.WithMetrics(metrics),
		services.WithLogger(utils.GetLogger().With(utils.String("component", "generation"))),
	)
	container.Register("generation", generation)

	utils.GetLogger().Info("服务初始化完成",
		utils.Strings("services", container.GetNames()),
		utils.Bool("upstream_configured", generation.HasCredential()))
	return nil
}

// PlannerOptions 本地规划工具的配置
type PlannerOptions struct {
	DataDir     string
	StoreDriver string
	ServerURL   string
	Notifier    trigger.Notifier
}

// Planner 本地规划工具所需的全部组件
type Planner struct {
	Service *services.PlannerService
	Trigger *trigger.Trigger
	store   storage.Store
}

// OpenPlanner 打开本地存储并组装规划服务与生成触发器
func OpenPlanner(opts PlannerOptions) (*Planner, error) {
	if err := os.MkdirAll(opts.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("创建数据目录失败: %w", err)
	}

	store, err := storage.Open(opts.StoreDriver, opts.DataDir)
	if err != nil {
		return nil, apperrors.WrapError(err, "打开本地存储失败", apperrors.ErrorTypeStorage)
	}

	logger := utils.GetLogger()
	return &Planner{
		Service: services.NewPlannerService(store, logger.With(utils.String("component", "planner"))),
		Trigger: trigger.New(opts.ServerURL,
			trigger.WithNotifier(opts.Notifier),
			trigger.WithLogger(logger.With(utils.String("component", "trigger")))),
		store: store,
	}, nil
}

// Close 关闭本地存储
func (p *Planner) Close() error {
	return p.store.Close()
}
