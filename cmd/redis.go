package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"ListenTogether/cache"

	"github.com/spf13/cobra"
)

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Redis连接测试",
	Long:  `使用 REDIS_URL 测试Redis连接是否成功，并进行基本读写操作。`,
	Run: func(cmd *cobra.Command, args []string) {
		if cfg.RedisURL == "" {
			log.Fatalf("未设置 REDIS_URL，服务将使用内存回退存储")
		}

		fmt.Println("开始测试Redis连接...")
		client, err := cache.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("无法连接到Redis: %v", err)
		}
		defer client.Close()
		fmt.Println("Redis连接成功！")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := cache.ProbeRedis(ctx, client); err != nil {
			log.Fatalf("Redis操作测试失败: %v", err)
		}
		fmt.Println("Redis基本操作测试成功！")
	},
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
