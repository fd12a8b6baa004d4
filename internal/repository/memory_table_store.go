package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	applogger "XetraPull/pkg/logger"
	pkgs3 "XetraPull/pkg/s3"
)

// MemoryObjects is an in-process ObjectClient.
type MemoryObjects struct {
	mu      sync.RWMutex
	bucket  string
	objects map[string][]byte
	lists   int
}

// NewMemoryObjects creates an empty in-memory bucket.
func NewMemoryObjects(bucket string) *MemoryObjects {
	return &MemoryObjects{bucket: bucket, objects: make(map[string][]byte)}
}

func (m *MemoryObjects) Bucket() string { return m.bucket }

func (m *MemoryObjects) URL(key string) string {
	return fmt.Sprintf("memory://%s/%s", m.bucket, key)
}

func (m *MemoryObjects) ListKeys(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++

	keys := make([]string, 0)
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryObjects) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("memory get %s: %w", key, pkgs3.ErrNotFound)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (m *MemoryObjects) Put(_ context.Context, key string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	m.objects[key] = stored
	return nil
}

// ListCalls returns how many listings were served.
func (m *MemoryObjects) ListCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lists
}

// MemoryTableStore is a TableStore kept entirely in memory, used for dry
// runs and tests.
type MemoryTableStore struct {
	*S3TableStore
	Objects *MemoryObjects
}

// NewMemoryTableStore creates an empty in-memory table store.
func NewMemoryTableStore(bucket string, l *applogger.Logger) *MemoryTableStore {
	objects := NewMemoryObjects(bucket)
	return &MemoryTableStore{
		S3TableStore: NewS3TableStore(objects, l),
		Objects:      objects,
	}
}

// PutObject stores raw bytes under key.
func (s *MemoryTableStore) PutObject(key string, data []byte) {
	_ = s.Objects.Put(context.Background(), key, data, "")
}

// Object returns the raw bytes stored under key.
func (s *MemoryTableStore) Object(key string) ([]byte, bool) {
	data, err := s.Objects.Get(context.Background(), key)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Keys lists every stored key in order.
func (s *MemoryTableStore) Keys() []string {
	s.Objects.mu.RLock()
	defer s.Objects.mu.RUnlock()

	keys := make([]string, 0, len(s.Objects.objects))
	for k := range s.Objects.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
