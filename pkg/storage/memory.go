package storage

import (
	"context"
	"sync"
)

// MemorySlot はプロセス内マップによる Slot 実装です。
type MemorySlot struct {
	mu    sync.RWMutex
	data  map[string][]byte
	quota int64
}

// NewMemorySlot は quota バイトを上限とする MemorySlot を生成します。0 以下は無制限です。
func NewMemorySlot(quota int64) *MemorySlot {
	return &MemorySlot{
		data:  make(map[string][]byte),
		quota: quota,
	}
}

func (m *MemorySlot) Read(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemorySlot) Write(ctx context.Context, key string, data []byte) error {
	if err := checkQuota(m.quota, data); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemorySlot) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
