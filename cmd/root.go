package cmd

import (
	"fmt"
	"os"

	"ListenTogether/config"
	"ListenTogether/logger"
	"ListenTogether/server"

	"github.com/spf13/cobra"
)

// cfg 在任何子命令执行前加载
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "listen_together",
	Short: "Listen Together keeps shared listening sessions in sync.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		logger.InitLogger(logger.Config{
			Level:      logger.LogLevel(cfg.LogLevel),
			OutputPath: cfg.LogFile,
			MaxSize:    cfg.LogMaxSize,
			MaxBackups: cfg.LogMaxBackups,
			MaxAge:     cfg.LogMaxAge,
			Compress:   cfg.LogCompress,
		})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
	Run: func(cmd *cobra.Command, args []string) {
		server.Start(cfg)
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
