package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"ListenTogether/model"
)

const backendMemory = "memory"

// FallbackStore 进程内会话存储，Redis 不可用时使用。
// 没有原生过期机制，需要定期调用 Cleanup。
type FallbackStore struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
	ttl      time.Duration
	now      func() time.Time
}

// FallbackOption 配置 FallbackStore
type FallbackOption func(*FallbackStore)

// WithFallbackTTL 设置不活跃过期时间
func WithFallbackTTL(ttl time.Duration) FallbackOption {
	return func(s *FallbackStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock 替换时钟，测试用
func WithClock(now func() time.Time) FallbackOption {
	return func(s *FallbackStore) {
		s.now = now
	}
}

// NewFallbackStore 创建内存回退存储，进程启动时构造一次并注入 SessionStore
func NewFallbackStore(opts ...FallbackOption) *FallbackStore {
	s := &FallbackStore{
		sessions: make(map[string]*model.Session),
		ttl:      DefaultSessionTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name 后端名称
func (s *FallbackStore) Name() string { return backendMemory }

// Get 返回副本，不存在返回 nil
func (s *FallbackStore) Get(_ context.Context, id string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[id].Clone(), nil
}

// Set 保存副本
func (s *FallbackStore) Set(_ context.Context, id string, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = session.Clone()
	return nil
}

// Delete 删除会话，返回是否存在
func (s *FallbackStore) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false, nil
	}
	delete(s.sessions, id)
	return true, nil
}

// List 按创建时间返回所有会话副本
func (s *FallbackStore) List(_ context.Context) ([]*model.Session, error) {
	s.mu.RLock()
	sessions := make([]*model.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt == sessions[j].CreatedAt {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].CreatedAt < sessions[j].CreatedAt
	})
	return sessions, nil
}

// Cleanup 清理 updatedAt 超过 TTL 的会话
func (s *FallbackStore) Cleanup(_ context.Context) (int, error) {
	cutoff := s.now().Add(-s.ttl).UnixMilli()

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, session := range s.sessions {
		if session.UpdatedAt < cutoff {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted, nil
}

// Len 当前条目数
func (s *FallbackStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
