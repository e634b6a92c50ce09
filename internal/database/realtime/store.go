// Package realtime is a keyed JSON document store with change subscriptions.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Collection paths
const (
	PathEvents          = "events"
	PathTrainers        = "trainers"
	PathPartners        = "partners"
	PathEventCategories = "eventCategories"
)

var ErrSubscriptionClosed = errors.New("subscription closed by the store")

// Document is one record of a collection snapshot.
type Document struct {
	Key  string
	Data json.RawMessage
}

type Store interface {
	// Push stores doc under a new time-ordered key and returns the key.
	Push(ctx context.Context, path string, doc any) (string, error)
	Set(ctx context.Context, path, key string, doc any) error
	// Update merges fields into the top level of the record. A nil value removes the field.
	Update(ctx context.Context, path, key string, fields map[string]any) error
	// Remove deletes the record. Removing a missing key is not an error.
	Remove(ctx context.Context, path, key string) error
	Get(ctx context.Context, path, key string) (json.RawMessage, error)
	Snapshot(ctx context.Context, path string) ([]Document, error)
	// Subscribe delivers the current snapshot right away and a fresh one after every change.
	Subscribe(ctx context.Context, path string) (*Subscription, error)
}

func newKey() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}
	return id.String(), nil
}

// Increasing is an Update value that never moves the stored number back:
// the field becomes max(value, stored+1).
type Increasing int64

func mergeFields(current []byte, fields map[string]any) ([]byte, error) {
	doc := make(map[string]json.RawMessage)
	if len(current) > 0 {
		if err := json.Unmarshal(current, &doc); err != nil {
			return nil, fmt.Errorf("decode stored document: %w", err)
		}
	}
	for name, value := range fields {
		if value == nil {
			delete(doc, name)
			continue
		}
		if inc, ok := value.(Increasing); ok {
			var stored int64
			if raw, found := doc[name]; found && json.Unmarshal(raw, &stored) == nil && int64(inc) <= stored {
				inc = Increasing(stored + 1)
			}
			value = int64(inc)
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode field %q: %w", name, err)
		}
		doc[name] = raw
	}
	return json.Marshal(doc)
}

func sortedDocuments(records map[string][]byte) []Document {
	docs := make([]Document, 0, len(records))
	for key, data := range records {
		docs = append(docs, Document{Key: key, Data: json.RawMessage(data)})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Key < docs[j].Key })
	return docs
}

type loader func(ctx context.Context) ([]Document, error)

// Subscription is a live view of one collection path.
type Subscription struct {
	snapshots chan []Document
	errs      chan error
	cancel    context.CancelFunc
	done      chan struct{}
}

// newSubscription reloads the snapshot every time notify fires. A closed
// notify channel ends the subscription with ErrSubscriptionClosed.
func newSubscription(ctx context.Context, load loader, notify <-chan struct{}, teardown func()) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	s := &Subscription{
		snapshots: make(chan []Document, 1),
		errs:      make(chan error, 1),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	go s.run(ctx, load, notify, teardown)
	return s
}

func (s *Subscription) run(ctx context.Context, load loader, notify <-chan struct{}, teardown func()) {
	defer close(s.done)
	defer close(s.errs)
	defer close(s.snapshots)
	defer teardown()

	s.refresh(ctx, load)
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-notify:
			if !ok {
				s.fail(ErrSubscriptionClosed)
				return
			}
			s.refresh(ctx, load)
		}
	}
}

func (s *Subscription) refresh(ctx context.Context, load loader) {
	docs, err := load(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.fail(err)
		}
		return
	}
	// only the latest snapshot matters, a stale one is dropped
	select {
	case s.snapshots <- docs:
	default:
		select {
		case <-s.snapshots:
		default:
		}
		s.snapshots <- docs
	}
}

func (s *Subscription) fail(err error) {
	select {
	case s.errs <- err:
	default:
	}
}

func (s *Subscription) Snapshots() <-chan []Document { return s.snapshots }

func (s *Subscription) Errors() <-chan error { return s.errs }

// Close stops the subscription and waits until its goroutine is gone.
func (s *Subscription) Close() {
	s.cancel()
	<-s.done
}
