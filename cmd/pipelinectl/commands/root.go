package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"livestream-pipeline/app"
	_ "livestream-pipeline/internal/resource"
	"livestream-pipeline/pkg/config"
	"livestream-pipeline/pkg/logger"
	"livestream-pipeline/pkg/manager"
)

// NewRootCmd pipelinectl 运维命令入口
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pipelinectl",
		Short:         "Operate the livestream transcription pipeline",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().String("config", "", "config file (defaults to CONFIG_PATH / CONFIG_ENV resolution)")

	root.AddCommand(newTranscribeCmd())
	root.AddCommand(newChapterizeCmd())
	root.AddCommand(newBatchCmd())
	root.AddCommand(newStatsCmd())
	root.AddCommand(newMigrateCmd())
	return root
}

// loadConfig 读取配置并初始化全局配置与日志
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = app.ResolveConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	config.SetGlobalConfig(cfg)
	logger.SetGlobalLogger(logger.NewLogger(cfg))
	return cfg, nil
}

// withResources 打开全部资源后执行 fn，结束时关闭
func withResources(cmd *cobra.Command, fn func(cfg *config.Config) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	manager.MustInitResources()
	defer manager.CloseResources()
	return fn(cfg)
}
