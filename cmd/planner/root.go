// cmd/planner/root.go
package main

import (
	"fmt"

	"github.com/Corphon/ContentPlannerMCP/internal/app"
	"github.com/Corphon/ContentPlannerMCP/internal/config"
	"github.com/Corphon/ContentPlannerMCP/internal/trigger"
	"github.com/Corphon/ContentPlannerMCP/internal/utils"
	"github.com/spf13/cobra"
)

// cliState 命令之间共享的参数与组件
type cliState struct {
	dataDir     string
	storeDriver string
	serverURL   string
	logDir      string
	logLevel    string

	planner *app.Planner
}

func newRootCommand() *cobra.Command {
	cfg, err := config.Load()
	if err != nil {
		cfg = &config.Config{DataDir: "data", LogDir: "logs", LogLevel: "info", StoreDriver: "file", ServerURL: "http://localhost:8080"}
	}

	state := &cliState{}

	cmd := &cobra.Command{
		Use:           "planner",
		Short:         "Plan social media posts with AI-generated copy",
		Long:          `Compose drafts, request AI copy and hashtags from the generation proxy, and organize posts on a monthly calendar.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return state.open(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return state.close()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&state.dataDir, "data-dir", cfg.DataDir, "directory holding the local planner store")
	flags.StringVar(&state.storeDriver, "store", cfg.StoreDriver, "store backend: file or sqlite")
	flags.StringVar(&state.serverURL, "server", cfg.ServerURL, "generation proxy base URL")
	flags.StringVar(&state.logDir, "log-dir", cfg.LogDir, "directory for log files")
	flags.StringVar(&state.logLevel, "log-level", cfg.LogLevel, "log level")

	cmd.AddCommand(
		newBrandCommand(state),
		newDraftCommand(state),
		newGenerateCommand(state),
		newSaveCommand(state),
		newPostsCommand(state),
		newCalendarCommand(state),
		newExportCommand(state),
		newImportCommand(state),
	)
	return cmd
}

func (s *cliState) open(cmd *cobra.Command) error {
	if s.logDir != "" {
		if err := utils.InitFileLogger(s.logDir, "planner", s.logLevel); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠️ 无法初始化日志: %v\n", err)
		}
	}

	planner, err := app.OpenPlanner(app.PlannerOptions{
		DataDir:     s.dataDir,
		StoreDriver: s.storeDriver,
		ServerURL:   s.serverURL,
		Notifier: trigger.NotifierFunc(func(message string) {
			fmt.Fprintln(cmd.ErrOrStderr(), message)
		}),
	})
	if err != nil {
		return fmt.Errorf("打开本地存储失败: %w", err)
	}
	s.planner = planner
	return nil
}

func (s *cliState) close() error {
	if s.planner == nil {
		return nil
	}
	err := s.planner.Close()
	s.planner = nil
	_ = utils.GetLogger().Sync()
	return err
}
