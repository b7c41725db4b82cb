package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", EnvOpenAIAPIKey, EnvOpenAIBaseURL, "DATA_DIR", "LOG_DIR", "LOG_LEVEL", "DEBUG_MODE", "STORE_DRIVER", "PLANNER_SERVER_URL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.OpenAIAPIKey)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "logs", cfg.LogDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.DebugMode)
	assert.Equal(t, "file", cfg.StoreDriver)
	assert.Equal(t, "http://localhost:8080", cfg.ServerURL)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DEBUG_MODE", "false")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("PLANNER_SERVER_URL", "http://planner.local")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.False(t, cfg.DebugMode)
	assert.Equal(t, "sqlite", cfg.StoreDriver)
	assert.Equal(t, "http://planner.local", cfg.ServerURL)
}

func TestOpenAIAPIKey_ReadPerCall(t *testing.T) {
	t.Setenv(EnvOpenAIAPIKey, "")
	assert.Empty(t, OpenAIAPIKey())

	t.Setenv(EnvOpenAIAPIKey, "  sk-test  ")
	assert.Equal(t, "sk-test", OpenAIAPIKey())

	t.Setenv(EnvOpenAIBaseURL, "http://localhost:9999/v1 ")
	assert.Equal(t, "http://localhost:9999/v1", OpenAIBaseURL())
}

func TestGetEnvBool(t *testing.T) {
	cases := map[string]bool{"true": true, "1": true, "yes": true, "no": false, "0": false}
	for value, want := range cases {
		t.Setenv("PLANNER_TEST_BOOL", value)
		assert.Equal(t, want, getEnvBool("PLANNER_TEST_BOOL", !want), value)
	}
}
