// cmd/planner/transfer.go
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Corphon/ContentPlannerMCP/internal/services"
)

func writeExport(dir string, file services.ExportFile) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("创建导出目录失败: %w", err)
	}
	path := filepath.Join(dir, file.Name)
	if err := os.WriteFile(path, file.Data, 0644); err != nil {
		return "", fmt.Errorf("写入导出文件失败: %w", err)
	}
	return path, nil
}

func readImport(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取导入文件失败: %w", err)
	}
	return data, nil
}
