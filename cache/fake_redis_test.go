package cache

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// fakeRedis 内存实现的 redisCommander，记录写入时的 TTL
type fakeRedis struct {
	mu       sync.Mutex
	data     map[string]string
	ttls     map[string]time.Duration
	err      error // 非空时所有命令都返回该错误
	pageSize int
	scans    int
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		data:     make(map[string]string),
		ttls:     make(map[string]time.Duration),
		pageSize: 2,
	}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	val, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	var n int64
	for _, key := range keys {
		if _, ok := f.data[key]; ok {
			delete(f.data, key)
			delete(f.ttls, key)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

// Scan 按排序后的 key 分页，cursor 即下一页起始下标
func (f *fakeRedis) Scan(_ context.Context, cursor uint64, match string, _ int64) *redis.ScanCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans++
	if f.err != nil {
		return redis.NewScanCmdResult(nil, 0, f.err)
	}

	prefix := strings.TrimSuffix(match, "*")
	keys := make([]string, 0, len(f.data))
	for key := range f.data {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	start := int(cursor)
	if start >= len(keys) {
		return redis.NewScanCmdResult([]string{}, 0, nil)
	}
	end := start + f.pageSize
	var next uint64
	if end < len(keys) {
		next = uint64(end)
	} else {
		end = len(keys)
	}
	return redis.NewScanCmdResult(keys[start:end], next, nil)
}
