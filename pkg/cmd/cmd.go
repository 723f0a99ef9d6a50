// Package cmd contains the command line applications for the project.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/storeclient/pkg/configs"
	"github.com/yeisme/storeclient/pkg/internal/service"
	"github.com/yeisme/storeclient/pkg/internal/storage"
	"github.com/yeisme/storeclient/pkg/log"
)

var (
	// configPath 配置文件或所在目录.
	configPath string
	// debug 输出调试日志，config debug 同时打印 viper 的内部状态.
	debug bool

	rootCmd = &cobra.Command{
		Use:           "storeclient",
		Short:         "A command line client for the record store API",
		Version:       configs.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := configs.InitConfig(configPath); err != nil {
				return err
			}

			if debug {
				cfg := configs.GetConfig()
				cfg.Server.Debug = true
				cfg.Log.Level = "debug"
			}

			log.Init()

			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "config file or directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	registerRecordCommands()
	registerProbeCommands()
	registerServeCommands()
	registerConfigsCommands()
	registerKVCommands()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// newService 使用全局配置初始化资源管理器并创建记录工作流.
func newService(ctx context.Context) (*service.RecordService, error) {
	mgr, err := storage.Init(ctx)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	return service.NewFromManager(mgr, configs.GetConfig().Upload), nil
}
