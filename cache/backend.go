package cache

import (
	"context"
	"errors"

	"ListenTogether/model"
)

// ErrStorageUnavailable 持久化后端故障（网络、认证、序列化），只在 cache 包内部流转
var ErrStorageUnavailable = errors.New("session storage unavailable")

// ErrCorruptSession 文档无法反序列化，同时包装 ErrStorageUnavailable
var ErrCorruptSession = errors.New("corrupt session document")

// Backend 会话存储后端。
//
// Get 在 key 不存在时返回 (nil, nil)；其余错误均包装 ErrStorageUnavailable。
// Cleanup 返回清理的条目数，原生支持 TTL 的后端直接返回 0。
type Backend interface {
	Name() string
	Get(ctx context.Context, id string) (*model.Session, error)
	Set(ctx context.Context, id string, session *model.Session) error
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]*model.Session, error)
	Cleanup(ctx context.Context) (int, error)
}

// DurableProvider 按需提供持久化后端，凭据无效时返回错误
type DurableProvider interface {
	Durable() (Backend, error)
}
