// Package repository mirrors realtime store collections into memory.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ds124wfegd/trainhub/internal/database/realtime"
	"github.com/ds124wfegd/trainhub/internal/entity"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// Mirror keeps the local copy of one collection. The list only changes when
// the store echoes a snapshot, mutators never touch it directly.
type Mirror[T any, PT interface {
	*T
	entity.Document
}] struct {
	store    realtime.Store
	path     string
	validate *validator.Validate
	now      func() time.Time

	// startMu serializes Start and Stop
	startMu sync.Mutex

	mu        sync.RWMutex
	items     []T
	loading   bool
	lastErr   error
	listeners []func()
	sub       *realtime.Subscription
	done      chan struct{}
}

func NewMirror[T any, PT interface {
	*T
	entity.Document
}](store realtime.Store, path string) *Mirror[T, PT] {
	return &Mirror[T, PT]{
		store:    store,
		path:     path,
		validate: validator.New(),
		now:      time.Now,
		loading:  true,
	}
}

// WithClock replaces the time source used for timestamps.
func (m *Mirror[T, PT]) WithClock(now func() time.Time) *Mirror[T, PT] {
	m.now = now
	return m
}

func (m *Mirror[T, PT]) Path() string { return m.path }

// Store is the backing store, nil when none was configured.
func (m *Mirror[T, PT]) Store() realtime.Store { return m.store }

func (m *Mirror[T, PT]) log() *logrus.Entry {
	return logrus.WithField("collection", m.path)
}

// Start subscribes to the collection. Calling it again while running does nothing.
func (m *Mirror[T, PT]) Start(ctx context.Context) error {
	if m.store == nil {
		return entity.ErrStoreNotInitialized
	}

	m.startMu.Lock()
	defer m.startMu.Unlock()

	m.mu.Lock()
	if m.sub != nil {
		m.mu.Unlock()
		return nil
	}
	m.loading = true
	m.mu.Unlock()

	sub, err := m.store.Subscribe(ctx, m.path)
	if err != nil {
		m.fail(err)
		return fmt.Errorf("subscribe %s: %w", m.path, err)
	}

	done := make(chan struct{})
	m.mu.Lock()
	m.sub = sub
	m.done = done
	m.mu.Unlock()

	go m.watch(sub, done)
	return nil
}

// Stop tears the subscription down and waits for the watcher to exit.
func (m *Mirror[T, PT]) Stop() {
	m.startMu.Lock()
	defer m.startMu.Unlock()

	m.mu.Lock()
	sub, done := m.sub, m.done
	m.sub, m.done = nil, nil
	m.mu.Unlock()

	if sub == nil {
		return
	}
	sub.Close()
	<-done
}

func (m *Mirror[T, PT]) watch(sub *realtime.Subscription, done chan struct{}) {
	defer close(done)

	snapshots, errs := sub.Snapshots(), sub.Errors()
	for snapshots != nil || errs != nil {
		select {
		case docs, ok := <-snapshots:
			if !ok {
				snapshots = nil
				continue
			}
			m.apply(docs)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			m.fail(err)
		}
	}
}

// Decode turns snapshot documents into records keyed by their store key.
// Records that do not decode are skipped.
func Decode[T any, PT interface {
	*T
	entity.Document
}](path string, docs []realtime.Document) []T {
	items := make([]T, 0, len(docs))
	for _, doc := range docs {
		var item T
		if err := json.Unmarshal(doc.Data, &item); err != nil {
			logrus.WithFields(logrus.Fields{"collection": path, "key": doc.Key}).
				Warnf("skipping undecodable record: %v", err)
			continue
		}
		PT(&item).SetKey(doc.Key)
		items = append(items, item)
	}
	return items
}

func (m *Mirror[T, PT]) apply(docs []realtime.Document) {
	items := Decode[T, PT](m.path, docs)

	m.mu.Lock()
	m.items = items
	m.loading = false
	m.lastErr = nil
	listeners := append([]func(){}, m.listeners...)
	m.mu.Unlock()

	m.log().Debugf("snapshot applied: %d records", len(items))
	for _, fn := range listeners {
		fn()
	}
}

// fail empties the list and surfaces err through Err.
func (m *Mirror[T, PT]) fail(err error) {
	m.log().Errorf("subscription failed: %v", err)

	m.mu.Lock()
	m.items = nil
	m.loading = false
	m.lastErr = err
	listeners := append([]func(){}, m.listeners...)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// Add validates form, stamps createdAt and updatedAt and pushes a new record.
func (m *Mirror[T, PT]) Add(ctx context.Context, form entity.Form[T]) (string, error) {
	if m.store == nil {
		return "", entity.ErrStoreNotInitialized
	}
	if err := m.validate.Struct(form); err != nil {
		return "", fmt.Errorf("%w: %s", entity.ErrInvalidInput, err.Error())
	}

	doc := form.Build(m.now().UnixMilli())
	key, err := m.store.Push(ctx, m.path, doc)
	if err != nil {
		m.log().Errorf("add failed: %v", err)
		return "", fmt.Errorf("add to %s: %w", m.path, err)
	}
	return key, nil
}

// Update merges the fields set in patch and moves updatedAt forward.
func (m *Mirror[T, PT]) Update(ctx context.Context, id string, patch entity.Patch[T]) error {
	if m.store == nil {
		return entity.ErrStoreNotInitialized
	}
	if err := m.validate.Struct(patch); err != nil {
		return fmt.Errorf("%w: %s", entity.ErrInvalidInput, err.Error())
	}

	if _, ok := m.GetByID(id); !ok {
		return fmt.Errorf("%s/%s: %w", m.path, id, entity.ErrNotFound)
	}

	fields := patch.Fields()
	// the store compares against the stored value, the local copy may lag
	fields["updatedAt"] = realtime.Increasing(m.now().UnixMilli())

	if err := m.store.Update(ctx, m.path, id, fields); err != nil {
		m.log().WithField("id", id).Errorf("update failed: %v", err)
		return fmt.Errorf("update %s/%s: %w", m.path, id, err)
	}
	return nil
}

func (m *Mirror[T, PT]) Remove(ctx context.Context, id string) error {
	if m.store == nil {
		return entity.ErrStoreNotInitialized
	}
	if err := m.store.Remove(ctx, m.path, id); err != nil {
		m.log().WithField("id", id).Errorf("remove failed: %v", err)
		return fmt.Errorf("remove %s/%s: %w", m.path, id, err)
	}
	return nil
}

// GetByID looks the record up in the local list only.
func (m *Mirror[T, PT]) GetByID(id string) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, item := range m.items {
		if PT(&item).Key() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// List returns a copy of the local list in store order.
func (m *Mirror[T, PT]) List() []T {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]T(nil), m.items...)
}

// Loading reports whether the first snapshot is still pending.
func (m *Mirror[T, PT]) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// Err returns the last subscription failure, cleared by the next snapshot.
func (m *Mirror[T, PT]) Err() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// OnChange registers fn to run after every snapshot or failure.
func (m *Mirror[T, PT]) OnChange(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}
