package cache

import (
	"context"

	"ListenTogether/config"
	"ListenTogether/logger"
	"ListenTogether/metrics"
	"ListenTogether/model"
)

// SessionStore 统一 Redis 与内存回退存储。
//
// 每次调用都会重新检查持久化凭据是否存在来选择后端。Redis 的任何故障
// 都在这里被记录并降级为"不存在"或空操作，不会向调用方返回错误。
// 读-改-写之间没有锁也没有 CAS，并发写入遵循最后写入者获胜。
type SessionStore struct {
	fallback  Backend
	durable   DurableProvider
	available func() bool
}

// StoreOption 配置 SessionStore
type StoreOption func(*SessionStore)

// WithDurable 设置持久化后端提供者
func WithDurable(provider DurableProvider) StoreOption {
	return func(s *SessionStore) {
		s.durable = provider
	}
}

// WithAvailability 替换凭据检查，默认检查 REDIS_URL 环境变量
func WithAvailability(available func() bool) StoreOption {
	return func(s *SessionStore) {
		s.available = available
	}
}

// NewSessionStore 创建会话存储，fallback 由调用方构造并注入
func NewSessionStore(fallback Backend, opts ...StoreOption) *SessionStore {
	s := &SessionStore{
		fallback:  fallback,
		available: config.DurableAvailable,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// backend 本次调用使用的后端；凭据存在但客户端无法创建时返回错误
func (s *SessionStore) backend() (Backend, error) {
	if s.durable == nil || !s.available() {
		return s.fallback, nil
	}
	return s.durable.Durable()
}

// BackendName 当前会被选中的后端名称
func (s *SessionStore) BackendName() string {
	if s.durable == nil || !s.available() {
		return s.fallback.Name()
	}
	return backendRedis
}

func record(backend, op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.StoreOperationsTotal.WithLabelValues(backend, op, status).Inc()
}

// Get 读取会话，不存在或存储故障时返回 nil
func (s *SessionStore) Get(ctx context.Context, id string) *model.Session {
	b, err := s.backend()
	if err != nil {
		record(backendRedis, "get", err)
		logger.Warn("选择存储后端失败", logger.String("sessionId", id), logger.ErrorField(err))
		return nil
	}

	session, err := b.Get(ctx, id)
	record(b.Name(), "get", err)
	if err != nil {
		logger.Warn("读取会话失败，按不存在处理",
			logger.String("sessionId", id),
			logger.String("backend", b.Name()),
			logger.ErrorField(err))
		return nil
	}
	return session
}

// Set 写入会话，存储故障时记录日志后丢弃本次写入
func (s *SessionStore) Set(ctx context.Context, id string, session *model.Session) {
	b, err := s.backend()
	if err != nil {
		record(backendRedis, "set", err)
		logger.Warn("选择存储后端失败", logger.String("sessionId", id), logger.ErrorField(err))
		return
	}

	err = b.Set(ctx, id, session)
	record(b.Name(), "set", err)
	if err != nil {
		logger.Error("写入会话失败，本次修改丢失",
			logger.String("sessionId", id),
			logger.String("backend", b.Name()),
			logger.ErrorField(err))
	}
}

// Delete 删除会话，存储故障时返回 false
func (s *SessionStore) Delete(ctx context.Context, id string) bool {
	b, err := s.backend()
	if err != nil {
		record(backendRedis, "delete", err)
		logger.Warn("选择存储后端失败", logger.String("sessionId", id), logger.ErrorField(err))
		return false
	}

	deleted, err := b.Delete(ctx, id)
	record(b.Name(), "delete", err)
	if err != nil {
		logger.Warn("删除会话失败",
			logger.String("sessionId", id),
			logger.String("backend", b.Name()),
			logger.ErrorField(err))
		return false
	}
	return deleted
}

// ListAll 列出全部会话，管理和调试用途；存储故障时返回空列表
func (s *SessionStore) ListAll(ctx context.Context) []*model.Session {
	b, err := s.backend()
	if err != nil {
		record(backendRedis, "list", err)
		logger.Warn("选择存储后端失败", logger.ErrorField(err))
		return []*model.Session{}
	}

	sessions, err := b.List(ctx)
	record(b.Name(), "list", err)
	if err != nil {
		logger.Warn("列出会话失败", logger.String("backend", b.Name()), logger.ErrorField(err))
		return []*model.Session{}
	}
	if sessions == nil {
		sessions = []*model.Session{}
	}
	return sessions
}

// Cleanup 清理过期会话；Redis 后端为空操作。返回清理数量
func (s *SessionStore) Cleanup(ctx context.Context) int {
	b, err := s.backend()
	if err != nil {
		record(backendRedis, "cleanup", err)
		logger.Warn("选择存储后端失败", logger.ErrorField(err))
		return 0
	}

	evicted, err := b.Cleanup(ctx)
	record(b.Name(), "cleanup", err)
	if err != nil {
		logger.Warn("清理会话失败", logger.String("backend", b.Name()), logger.ErrorField(err))
		return 0
	}
	if evicted > 0 {
		metrics.SessionsEvictedTotal.Add(float64(evicted))
		logger.Info("已清理过期会话", logger.String("backend", b.Name()), logger.Int("evicted", evicted))
	}
	return evicted
}
