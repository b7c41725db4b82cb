// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Corphon/ContentPlannerMCP/internal/api"
	"github.com/Corphon/ContentPlannerMCP/internal/app"
	"github.com/Corphon/ContentPlannerMCP/internal/config"
	"github.com/Corphon/ContentPlannerMCP/internal/di"
	"github.com/Corphon/ContentPlannerMCP/internal/utils"
	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("🚀 启动 ContentPlanner 生成代理...")

	// 1. 加载基础配置
	baseConfig, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	log.Printf("✅ 基础配置加载完成，端口: %s", baseConfig.Port)

	// 2. 初始化日志
	if err := os.MkdirAll(baseConfig.LogDir, 0755); err != nil {
		log.Fatalf("创建日志目录失败 %s: %v", baseConfig.LogDir, err)
	}
	if err := utils.InitLogger(baseConfig.LogDir, baseConfig.LogLevel); err != nil {
		log.Printf("⚠️ 无法初始化结构化日志: %v", err)
	}
	logger := utils.GetLogger()
	defer logger.Sync()

	if !baseConfig.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// 3. 初始化服务
	if err := app.InitServices(); err != nil {
		log.Fatalf("初始化服务失败: %v", err)
	}
	log.Println("✅ 所有服务初始化完成")

	if err := performHealthCheck(); err != nil {
		log.Printf("⚠️ 服务健康检查警告: %v", err)
	}
	if baseConfig.OpenAIAPIKey == "" {
		log.Println("⚠️ 未配置 OPENAI_API_KEY，生成接口将返回固定内容")
	}

	// 4. 设置路由
	router, err := api.SetupRouter()
	if err != nil {
		log.Fatalf("❌ 设置路由失败: %v", err)
	}
	log.Println("✅ 路由设置完成")

	log.Printf("🌐 服务器启动在端口 %s", baseConfig.Port)
	log.Printf("🔗 生成接口: http://localhost:%s/api/generate", baseConfig.Port)

	setupGracefulShutdown(router, baseConfig.Port, logger)
}

// 健康检查函数
func performHealthCheck() error {
	container := di.GetContainer()

	for _, serviceName := range []string{"config", "metrics", "generation"} {
		if service := container.Get(serviceName); service == nil {
			return fmt.Errorf("关键服务未注册: %s", serviceName)
		}
	}

	log.Println("✅ 服务健康检查通过")
	return nil
}

// 优雅关闭函数
func setupGracefulShutdown(router *gin.Engine, port string, logger *utils.Logger) {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("启动服务器失败", utils.Err(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器强制关闭", utils.Err(err))
		return
	}

	log.Println("✅ 服务器优雅关闭完成")
}
