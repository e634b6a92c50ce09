package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ds124wfegd/trainhub/internal/entity"
)

// MemoryStore keeps collections in process memory.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string][]byte
	watchers    map[string]map[chan struct{}]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string][]byte),
		watchers:    make(map[string]map[chan struct{}]struct{}),
	}
}

func (s *MemoryStore) Push(ctx context.Context, path string, doc any) (string, error) {
	key, err := newKey()
	if err != nil {
		return "", err
	}
	if err := s.Set(ctx, path, key, doc); err != nil {
		return "", err
	}
	return key, nil
}

func (s *MemoryStore) Set(ctx context.Context, path, key string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	s.collection(path)[key] = data
	s.notify(path)
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, path, key string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	records := s.collection(path)
	merged, err := mergeFields(records[key], fields)
	if err != nil {
		return err
	}
	records[key] = merged
	s.notify(path)
	return nil
}

func (s *MemoryStore) Remove(ctx context.Context, path, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	records := s.collections[path]
	if _, ok := records[key]; !ok {
		return nil
	}
	delete(records, key)
	s.notify(path)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, path, key string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.collections[path][key]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return append(json.RawMessage(nil), data...), nil
}

func (s *MemoryStore) Snapshot(ctx context.Context, path string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make(map[string][]byte, len(s.collections[path]))
	for key, data := range s.collections[path] {
		records[key] = append([]byte(nil), data...)
	}
	return sortedDocuments(records), nil
}

func (s *MemoryStore) Subscribe(ctx context.Context, path string) (*Subscription, error) {
	notify := make(chan struct{}, 1)

	s.mu.Lock()
	if s.watchers[path] == nil {
		s.watchers[path] = make(map[chan struct{}]struct{})
	}
	s.watchers[path][notify] = struct{}{}
	s.mu.Unlock()

	teardown := func() {
		s.mu.Lock()
		delete(s.watchers[path], notify)
		s.mu.Unlock()
	}
	load := func(ctx context.Context) ([]Document, error) {
		return s.Snapshot(ctx, path)
	}
	return newSubscription(ctx, load, notify, teardown), nil
}

// collection must be called with mu held for writing.
func (s *MemoryStore) collection(path string) map[string][]byte {
	records, ok := s.collections[path]
	if !ok {
		records = make(map[string][]byte)
		s.collections[path] = records
	}
	return records
}

func (s *MemoryStore) notify(path string) {
	for ch := range s.watchers[path] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
