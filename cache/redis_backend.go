package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"ListenTogether/config"
	"ListenTogether/logger"
	"ListenTogether/model"

	"github.com/go-redis/redis/v8"
)

const (
	backendRedis = "redis"

	// DefaultKeyPrefix 会话 key 命名空间
	DefaultKeyPrefix = "listen:session:"
	// DefaultSessionTTL 每次写入都会刷新的过期时间
	DefaultSessionTTL = 2 * time.Hour

	scanBatch = 100
)

// redisCommander 会话存储用到的 Redis 命令子集，*redis.Client 满足该接口
type redisCommander interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
}

// RedisBackend 基于 Redis 的持久化会话后端
type RedisBackend struct {
	client redisCommander
	prefix string
	ttl    time.Duration
}

// NewRedisBackend 创建 Redis 后端，prefix 为空时使用默认命名空间
func NewRedisBackend(client redisCommander, prefix string, ttl time.Duration) *RedisBackend {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisBackend{client: client, prefix: prefix, ttl: ttl}
}

// Name 后端名称
func (b *RedisBackend) Name() string { return backendRedis }

func (b *RedisBackend) key(id string) string {
	return b.prefix + id
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: redis %s: %v", ErrStorageUnavailable, op, err)
}

// Get 读取并反序列化会话，key 不存在返回 nil
func (b *RedisBackend) Get(ctx context.Context, id string) (*model.Session, error) {
	if b.client == nil {
		return nil, unavailable("get", errors.New("Redis client not initialized"))
	}

	data, err := b.client.Get(ctx, b.key(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, unavailable("get", err)
	}

	var session model.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("%w: %w: key %s: %v", ErrStorageUnavailable, ErrCorruptSession, b.key(id), err)
	}
	return &session, nil
}

// Set 整条写入并刷新 TTL
func (b *RedisBackend) Set(ctx context.Context, id string, session *model.Session) error {
	if b.client == nil {
		return unavailable("set", errors.New("Redis client not initialized"))
	}

	data, err := json.Marshal(session)
	if err != nil {
		return unavailable("encode", err)
	}
	if err := b.client.Set(ctx, b.key(id), data, b.ttl).Err(); err != nil {
		return unavailable("set", err)
	}
	return nil
}

// Delete 删除会话，返回 key 是否存在
func (b *RedisBackend) Delete(ctx context.Context, id string) (bool, error) {
	if b.client == nil {
		return false, unavailable("del", errors.New("Redis client not initialized"))
	}

	n, err := b.client.Del(ctx, b.key(id)).Result()
	if err != nil {
		return false, unavailable("del", err)
	}
	return n > 0, nil
}

// List 用 SCAN 遍历命名空间下的 key 并逐个读取，管理用途
func (b *RedisBackend) List(ctx context.Context) ([]*model.Session, error) {
	if b.client == nil {
		return nil, unavailable("scan", errors.New("Redis client not initialized"))
	}

	var (
		cursor   uint64
		sessions []*model.Session
		seen     = make(map[string]struct{})
	)
	for {
		keys, next, err := b.client.Scan(ctx, cursor, b.prefix+"*", scanBatch).Result()
		if err != nil {
			return nil, unavailable("scan", err)
		}
		for _, key := range keys {
			// SCAN 可能返回重复 key
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}

			session, err := b.Get(ctx, strings.TrimPrefix(key, b.prefix))
			if errors.Is(err, ErrCorruptSession) {
				// 损坏的文档按不存在处理，不影响其他会话
				logger.Warn("跳过无法解析的会话", logger.String("key", key), logger.ErrorField(err))
				continue
			}
			if err != nil {
				return nil, err
			}
			// 扫描与读取之间可能已过期
			if session != nil {
				sessions = append(sessions, session)
			}
		}
		if next == 0 {
			break
		}
		cursor = next
	}
	return sessions, nil
}

// Cleanup Redis 原生处理 TTL，无需清理
func (b *RedisBackend) Cleanup(context.Context) (int, error) {
	return 0, nil
}

// EnvRedisProvider 每次调用读取 REDIS_URL，URL 变化时重建客户端
type EnvRedisProvider struct {
	mu      sync.Mutex
	url     string
	client  *redis.Client
	backend *RedisBackend
	prefix  string
	ttl     time.Duration
}

// NewEnvRedisProvider 创建基于环境变量的 Redis 后端提供者
func NewEnvRedisProvider(prefix string, ttl time.Duration) *EnvRedisProvider {
	return &EnvRedisProvider{prefix: prefix, ttl: ttl}
}

// Durable 返回当前 REDIS_URL 对应的后端
func (p *EnvRedisProvider) Durable() (Backend, error) {
	url := os.Getenv(config.RedisURLEnv)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.backend != nil && p.url == url {
		return p.backend, nil
	}

	client, err := NewRedisClient(url)
	if err != nil {
		return nil, unavailable("connect", err)
	}
	if p.client != nil {
		p.client.Close()
	}
	p.url = url
	p.client = client
	p.backend = NewRedisBackend(client, p.prefix, p.ttl)
	return p.backend, nil
}

// Close 关闭底层客户端
func (p *EnvRedisProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client == nil {
		return nil
	}
	err := p.client.Close()
	p.client = nil
	p.backend = nil
	return err
}
