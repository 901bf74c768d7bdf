// Package store 提供 core.Store / core.KeyValueStore 的基础设施实现：
// 内存（测试/开发）与 Redis（生产）。注册表与缓存都构建在这些接口之上。
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rushteam/matchkit/core"
)

// MemoryStore 是内存实现的 KeyValueStore，用于测试/开发/单机部署。
// 支持 TTL，进程重启后数据丢失。
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]*entry
	zsets  map[string]map[string]float64 // zset key -> member -> score
	hashes map[string]map[string][]byte  // hash key -> field -> value
	clean  *time.Ticker
	done   chan struct{}
}

type entry struct {
	value     []byte
	expiresAt *time.Time
}

func (e *entry) expired(now time.Time) bool {
	return e.expiresAt != nil && now.After(*e.expiresAt)
}

// NewMemoryStore 创建内存存储并启动后台过期清理。
func NewMemoryStore() *MemoryStore {
	ms := &MemoryStore{
		data:   make(map[string]*entry),
		zsets:  make(map[string]map[string]float64),
		hashes: make(map[string]map[string][]byte),
		clean:  time.NewTicker(10 * time.Second),
		done:   make(chan struct{}),
	}
	go ms.cleanup()
	return ms
}

func (m *MemoryStore) Name() string { return "memory" }

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.data[key]
	if !ok || e.expired(time.Now()) {
		return nil, core.ErrStoreNotFound
	}
	return e.value, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl ...int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := &entry{value: value}
	if len(ttl) > 0 && ttl[0] > 0 {
		expire := time.Now().Add(time.Duration(ttl[0]) * time.Second)
		e.expiresAt = &expire
	}
	m.data[key] = e
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryStore) BatchGet(_ context.Context, keys []string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string][]byte, len(keys))
	now := time.Now()
	for _, k := range keys {
		if e, ok := m.data[k]; ok && !e.expired(now) {
			result[k] = e.value
		}
	}
	return result, nil
}

func (m *MemoryStore) BatchSet(_ context.Context, kvs map[string][]byte, ttl ...int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expire *time.Time
	if len(ttl) > 0 && ttl[0] > 0 {
		t := time.Now().Add(time.Duration(ttl[0]) * time.Second)
		expire = &t
	}
	for k, v := range kvs {
		m.data[k] = &entry{value: v, expiresAt: expire}
	}
	return nil
}

func (m *MemoryStore) Close() error {
	m.clean.Stop()
	close(m.done)
	return nil
}

func (m *MemoryStore) cleanup() {
	for {
		select {
		case <-m.done:
			return
		case <-m.clean.C:
			m.mu.Lock()
			now := time.Now()
			for k, e := range m.data {
				if e.expired(now) {
					delete(m.data, k)
				}
			}
			m.mu.Unlock()
		}
	}
}

var _ core.KeyValueStore = (*MemoryStore)(nil)

func (m *MemoryStore) ZAdd(_ context.Context, key string, score float64, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.zsets[key] == nil {
		m.zsets[key] = make(map[string]float64)
	}
	m.zsets[key][member] = score
	return nil
}

func (m *MemoryStore) ZRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	zset, ok := m.zsets[key]
	if !ok || len(zset) == 0 {
		return nil, nil
	}

	type pair struct {
		member string
		score  float64
	}
	pairs := make([]pair, 0, len(zset))
	for member, score := range zset {
		pairs = append(pairs, pair{member: member, score: score})
	}
	// score 降序；同分按成员名保证稳定顺序
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].score != pairs[j].score {
			return pairs[i].score > pairs[j].score
		}
		return strings.Compare(pairs[i].member, pairs[j].member) < 0
	})

	if start < 0 {
		start = 0
	}
	if stop < 0 || stop >= int64(len(pairs)) {
		stop = int64(len(pairs)) - 1
	}
	if start > stop {
		return nil, nil
	}

	result := make([]string, 0, stop-start+1)
	for i := start; i <= stop; i++ {
		result = append(result, pairs[i].member)
	}
	return result, nil
}

func (m *MemoryStore) ZScore(_ context.Context, key string, member string) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	zset, ok := m.zsets[key]
	if !ok {
		return 0, core.ErrStoreNotFound
	}
	score, ok := zset[member]
	if !ok {
		return 0, core.ErrStoreNotFound
	}
	return score, nil
}

func (m *MemoryStore) HGet(_ context.Context, key, field string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hash, ok := m.hashes[key]
	if !ok {
		return nil, core.ErrStoreNotFound
	}
	value, ok := hash[field]
	if !ok {
		return nil, core.ErrStoreNotFound
	}
	return value, nil
}

func (m *MemoryStore) HSet(_ context.Context, key, field string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.hashes[key] == nil {
		m.hashes[key] = make(map[string][]byte)
	}
	m.hashes[key][field] = value
	return nil
}

func (m *MemoryStore) HGetAll(_ context.Context, key string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hash, ok := m.hashes[key]
	if !ok {
		return map[string][]byte{}, nil
	}
	result := make(map[string][]byte, len(hash))
	for f, v := range hash {
		result[f] = v
	}
	return result, nil
}
