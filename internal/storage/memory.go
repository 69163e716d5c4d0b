package storage

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
)

type Object struct {
	Data        []byte
	ContentType string
	Size        int64
	ACL         string
}

// Memory keeps objects in process. It backs local development and tests.
type Memory struct {
	mu        sync.RWMutex
	objects   map[string]Object
	publicURL string
}

func NewMemory(publicURL string) *Memory {
	return &Memory{
		objects:   make(map[string]Object),
		publicURL: publicURL,
	}
}

func (m *Memory) Put(ctx context.Context, key string, body io.Reader, contentType string, size int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read object %s: %w", key, err)
	}
	if size >= 0 && int64(len(data)) != size {
		return fmt.Errorf("object %s: declared %d bytes, got %d", key, size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = Object{
		Data:        data,
		ContentType: contentType,
		Size:        int64(len(data)),
		ACL:         ACLPublicRead,
	}
	return nil
}

func (m *Memory) URL(key string) string {
	return objectURL(m.publicURL, key)
}

func (m *Memory) Get(key string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj, ok
}

// Keys returns the stored keys in sorted order.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
