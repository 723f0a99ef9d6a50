package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yeisme/storeclient/pkg/app"
	"github.com/yeisme/storeclient/pkg/configs"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "run the HTTP gateway",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := app.NewApp(ctx, configs.GetConfig())
		if err != nil {
			return err
		}

		return a.Run(ctx)
	},
}

// registerServeCommands 注册网关命令.
func registerServeCommands() {
	rootCmd.AddCommand(serveCmd)
}
