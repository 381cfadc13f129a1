package memory

import (
	"context"
	"sync"

	"campus-crave/internal/storage"
)

var _ storage.KV = (*KV)(nil)

// KV keeps values in process memory. Several stores may share one KV to act
// like tabs of the same browser origin.
type KV struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

func New() *KV { return &KV{data: map[string][]byte{}} }

func (m *KV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, false, storage.ErrClosed
	}
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *KV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return storage.ErrClosed
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *KV) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}
