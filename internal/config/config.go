// internal/config/config.go
package config

import (
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

const (
	EnvOpenAIAPIKey  = "OPENAI_API_KEY"
	EnvOpenAIBaseURL = "OPENAI_BASE_URL"
)

var envOnce sync.Once

// Config 存储应用配置
type Config struct {
	Port          string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	DataDir       string
	LogDir        string
	LogLevel      string
	DebugMode     bool

	// 本地规划工具
	StoreDriver string
	ServerURL   string
}

// loadEnvFile 加载.env文件（可选，只加载一次）
func loadEnvFile() {
	envOnce.Do(func() {
		_ = godotenv.Load()
	})
}

// Load 从环境变量加载配置
// 未设置OPENAI_API_KEY不是错误，生成接口会使用固定的后备内容
func Load() (*Config, error) {
	loadEnvFile()

	return &Config{
		Port:          getEnv("PORT", "8080"),
		OpenAIAPIKey:  getEnv(EnvOpenAIAPIKey, ""),
		OpenAIBaseURL: getEnv(EnvOpenAIBaseURL, ""),
		DataDir:       getEnv("DATA_DIR", "data"),
		LogDir:        getEnv("LOG_DIR", "logs"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DebugMode:     getEnvBool("DEBUG_MODE", true),
		StoreDriver:   getEnv("STORE_DRIVER", "file"),
		ServerURL:     getEnv("PLANNER_SERVER_URL", "http://localhost:8080"),
	}, nil
}

// OpenAIAPIKey 读取当前进程配置中的上游凭证，每次请求调用一次
func OpenAIAPIKey() string {
	loadEnvFile()
	return strings.TrimSpace(os.Getenv(EnvOpenAIAPIKey))
}

// OpenAIBaseURL 读取上游地址覆盖
func OpenAIBaseURL() string {
	loadEnvFile()
	return strings.TrimSpace(os.Getenv(EnvOpenAIBaseURL))
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvBool 获取布尔类型环境变量
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	return value == "true" || value == "1" || value == "yes"
}
