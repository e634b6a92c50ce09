package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/ds124wfegd/trainhub/internal/entity"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })

	store, err := NewRedisStore(context.Background(), client, "trainhub")
	require.NoError(t, err)
	return store
}

func stores(t *testing.T) map[string]Store {
	return map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  newRedisStore(t),
	}
}

func decode(t *testing.T, data json.RawMessage) record {
	t.Helper()
	var r record
	require.NoError(t, json.Unmarshal(data, &r))
	return r
}

func nextSnapshot(t *testing.T, sub *Subscription) []Document {
	t.Helper()
	select {
	case docs, ok := <-sub.Snapshots():
		require.True(t, ok, "subscription closed")
		return docs
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot received")
		return nil
	}
}

// TestStorePushAndSnapshot проверяет, что снимок упорядочен по времени добавления
func TestStorePushAndSnapshot(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			var keys []string
			for _, n := range []string{"first", "second", "third"} {
				key, err := store.Push(ctx, PathEvents, record{Name: n})
				require.NoError(t, err)
				keys = append(keys, key)
			}

			docs, err := store.Snapshot(ctx, PathEvents)
			require.NoError(t, err)
			require.Len(t, docs, 3)
			for i, doc := range docs {
				assert.Equal(t, keys[i], doc.Key)
			}
			assert.Equal(t, "first", decode(t, docs[0].Data).Name)
			assert.Equal(t, "third", decode(t, docs[2].Data).Name)

			empty, err := store.Snapshot(ctx, PathTrainers)
			require.NoError(t, err)
			assert.Empty(t, empty)
		})
	}
}

func TestStoreUpdateMergesTopLevelFields(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			key, err := store.Push(ctx, PathPartners, record{Name: "Acme", Count: 1})
			require.NoError(t, err)

			require.NoError(t, store.Update(ctx, PathPartners, key, map[string]any{"count": 5}))

			data, err := store.Get(ctx, PathPartners, key)
			require.NoError(t, err)
			assert.Equal(t, record{Name: "Acme", Count: 5}, decode(t, data))

			// nil убирает поле
			require.NoError(t, store.Update(ctx, PathPartners, key, map[string]any{"name": nil}))
			data, err = store.Get(ctx, PathPartners, key)
			require.NoError(t, err)
			assert.JSONEq(t, `{"count":5}`, string(data))
		})
	}
}

func TestStoreUpdateIncreasing(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			key, err := store.Push(ctx, PathEvents, map[string]any{"updatedAt": 1000})
			require.NoError(t, err)

			// часы не сдвинулись, значение всё равно растёт
			require.NoError(t, store.Update(ctx, PathEvents, key, map[string]any{"updatedAt": Increasing(1000)}))
			require.NoError(t, store.Update(ctx, PathEvents, key, map[string]any{"updatedAt": Increasing(1000)}))
			data, err := store.Get(ctx, PathEvents, key)
			require.NoError(t, err)
			assert.JSONEq(t, `{"updatedAt":1002}`, string(data))

			require.NoError(t, store.Update(ctx, PathEvents, key, map[string]any{"updatedAt": Increasing(5000)}))
			data, err = store.Get(ctx, PathEvents, key)
			require.NoError(t, err)
			assert.JSONEq(t, `{"updatedAt":5000}`, string(data))
		})
	}
}

func TestStoreRemove(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			key, err := store.Push(ctx, PathEventCategories, record{Name: "Data"})
			require.NoError(t, err)

			require.NoError(t, store.Remove(ctx, PathEventCategories, key))
			require.NoError(t, store.Remove(ctx, PathEventCategories, key), "removing a missing key is a no-op")
			require.NoError(t, store.Remove(ctx, "unknown", "nope"))

			_, err = store.Get(ctx, PathEventCategories, key)
			assert.ErrorIs(t, err, entity.ErrNotFound)
		})
	}
}

func TestStoreSubscribe(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Push(ctx, PathTrainers, record{Name: "Ann"})
			require.NoError(t, err)

			sub, err := store.Subscribe(ctx, PathTrainers)
			require.NoError(t, err)
			defer sub.Close()

			initial := nextSnapshot(t, sub)
			require.Len(t, initial, 1)

			key, err := store.Push(ctx, PathTrainers, record{Name: "Bob"})
			require.NoError(t, err)

			require.Eventually(t, func() bool {
				select {
				case docs := <-sub.Snapshots():
					return len(docs) == 2 && docs[1].Key == key
				default:
					return false
				}
			}, 2*time.Second, 10*time.Millisecond)
		})
	}
}

func TestSubscriptionCloseEndsChannels(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			sub, err := store.Subscribe(context.Background(), PathEvents)
			require.NoError(t, err)

			nextSnapshot(t, sub)
			sub.Close()

			_, ok := <-sub.Snapshots()
			assert.False(t, ok)
			_, ok = <-sub.Errors()
			assert.False(t, ok)
		})
	}
}

func TestSubscriptionCancelledByContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := store.Subscribe(ctx, PathEvents)
	require.NoError(t, err)
	nextSnapshot(t, sub)

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-sub.Snapshots():
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)

	store.mu.RLock()
	defer store.mu.RUnlock()
	assert.Empty(t, store.watchers[PathEvents])
}

func TestNotifyClosedReportsError(t *testing.T) {
	notify := make(chan struct{})
	load := func(context.Context) ([]Document, error) { return nil, nil }

	sub := newSubscription(context.Background(), load, notify, func() {})
	nextSnapshot(t, sub)
	close(notify)

	select {
	case err := <-sub.Errors():
		assert.ErrorIs(t, err, ErrSubscriptionClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("no error received")
	}
	sub.Close()
}

func TestRedisStoreLayout(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	store, err := NewRedisStore(context.Background(), client, "trainhub")
	require.NoError(t, err)

	key, err := store.Push(context.Background(), PathEvents, record{Name: "x"})
	require.NoError(t, err)

	value := server.HGet("trainhub:events", key)
	assert.JSONEq(t, `{"name":"x","count":0}`, value)
}

func TestRedisStoreRemoveNotifies(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	key, err := store.Push(ctx, PathTrainers, record{Name: "Ann"})
	require.NoError(t, err)

	sub, err := store.Subscribe(ctx, PathTrainers)
	require.NoError(t, err)
	defer sub.Close()
	require.Len(t, nextSnapshot(t, sub), 1)

	require.NoError(t, store.Remove(ctx, PathTrainers, key))
	assert.Empty(t, nextSnapshot(t, sub))
}

func TestRedisStoreRemoveFailsAsOne(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr(), MaxRetries: -1})
	defer client.Close()

	store, err := NewRedisStore(context.Background(), client, "trainhub")
	require.NoError(t, err)
	key, err := store.Push(context.Background(), PathTrainers, record{Name: "Ann"})
	require.NoError(t, err)

	server.SetError("READONLY")
	assert.Error(t, store.Remove(context.Background(), PathTrainers, key))
	server.SetError("")

	_, err = store.Get(context.Background(), PathTrainers, key)
	assert.NoError(t, err, "a failed transaction keeps the record")
}
