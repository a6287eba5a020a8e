package cmd

import (
	"ListenTogether/cache"
)

// newStore 命令行工具使用的会话存储，与服务器相同的后端选择规则
func newStore() (*cache.SessionStore, func()) {
	provider := cache.NewEnvRedisProvider(cfg.KeyPrefix, cfg.SessionTTL)
	fallback := cache.NewFallbackStore(cache.WithFallbackTTL(cfg.SessionTTL))
	store := cache.NewSessionStore(fallback, cache.WithDurable(provider))
	return store, func() { provider.Close() }
}
