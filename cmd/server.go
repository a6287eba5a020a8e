package cmd

import (
	"ListenTogether/server"

	"github.com/spf13/cobra"
)

var portOverride string

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动会话同步服务器",
	Long:  `启动 Listen Together 的HTTP服务器，提供房主控制和听众轮询的API`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start(cfg)
	},
}

func init() {
	serverCmd.Flags().StringVarP(&portOverride, "port", "p", "", "监听端口，覆盖 SERVER_PORT")
	serverCmd.PreRun = func(cmd *cobra.Command, args []string) {
		if portOverride != "" {
			cfg.ServerPort = portOverride
		}
	}
	rootCmd.AddCommand(serverCmd)
}
