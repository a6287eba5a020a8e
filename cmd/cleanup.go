package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "执行一次过期会话清理",
	Long:  `对当前存储后端执行一次 Cleanup。Redis 后端由 TTL 自动过期，此命令为空操作。`,
	Run: func(cmd *cobra.Command, args []string) {
		store, closeStore := newStore()
		defer closeStore()

		evicted := store.Cleanup(cmd.Context())
		fmt.Printf("后端: %s, 清理会话数: %d\n", store.BackendName(), evicted)
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}
