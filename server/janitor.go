package server

import (
	"context"
	"time"

	"ListenTogether/logger"
)

// cleaner 定期清理的目标，cache.SessionStore 满足该接口
type cleaner interface {
	Cleanup(ctx context.Context) int
}

// RunJanitor 按固定周期调用 Cleanup，直到 ctx 取消。
// Redis 后端下 Cleanup 为空操作，周期调用无副作用。
func RunJanitor(ctx context.Context, store cleaner, interval time.Duration) {
	if interval <= 0 {
		logger.Warn("清理周期无效，跳过定期清理", logger.Duration("interval", interval))
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			store.Cleanup(ctx)
		}
	}
}
