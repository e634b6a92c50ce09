package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ds124wfegd/trainhub/internal/entity"
	"github.com/go-redis/redis/v8"
)

const maxMergeAttempts = 10

var ErrMergeConflict = errors.New("document changed concurrently too many times")

// RedisStore keeps each collection in a hash and announces writes on a
// pub/sub channel next to it.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(ctx context.Context, client *redis.Client, prefix string) (*RedisStore, error) {
	// Проверка подключения
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

func (s *RedisStore) hashKey(path string) string {
	return s.prefix + ":" + path
}

func (s *RedisStore) channel(path string) string {
	return s.hashKey(path) + ":changes"
}

func (s *RedisStore) Push(ctx context.Context, path string, doc any) (string, error) {
	key, err := newKey()
	if err != nil {
		return "", err
	}
	if err := s.Set(ctx, path, key, doc); err != nil {
		return "", err
	}
	return key, nil
}

func (s *RedisStore) Set(ctx context.Context, path, key string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.hashKey(path), key, data)
		pipe.Publish(ctx, s.channel(path), key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("write %s/%s: %w", path, key, err)
	}
	return nil
}

func (s *RedisStore) Update(ctx context.Context, path, key string, fields map[string]any) error {
	hash := s.hashKey(path)

	merge := func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, hash, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		merged, err := mergeFields(current, fields)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, hash, key, merged)
			pipe.Publish(ctx, s.channel(path), key)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxMergeAttempts; attempt++ {
		err := s.client.Watch(ctx, merge, hash)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return fmt.Errorf("update %s/%s: %w", path, key, err)
	}
	return fmt.Errorf("update %s/%s: %w", path, key, ErrMergeConflict)
}

func (s *RedisStore) Remove(ctx context.Context, path, key string) error {
	// удаление и уведомление уходят одной транзакцией
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, s.hashKey(path), key)
		pipe.Publish(ctx, s.channel(path), key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("remove %s/%s: %w", path, key, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, path, key string) (json.RawMessage, error) {
	data, err := s.client.HGet(ctx, s.hashKey(path), key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, entity.ErrNotFound
		}
		return nil, fmt.Errorf("get %s/%s: %w", path, key, err)
	}
	return json.RawMessage(data), nil
}

func (s *RedisStore) Snapshot(ctx context.Context, path string) ([]Document, error) {
	values, err := s.client.HGetAll(ctx, s.hashKey(path)).Result()
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}

	records := make(map[string][]byte, len(values))
	for key, value := range values {
		records[key] = []byte(value)
	}
	return sortedDocuments(records), nil
}

func (s *RedisStore) Subscribe(ctx context.Context, path string) (*Subscription, error) {
	pubsub := s.client.Subscribe(ctx, s.channel(path))

	// ждём подтверждения подписки, чтобы не пропустить изменения между подпиской и первым снимком
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", path, err)
	}

	messages := pubsub.Channel()
	notify := make(chan struct{}, 1)
	go func() {
		defer close(notify)
		for range messages {
			select {
			case notify <- struct{}{}:
			default:
			}
		}
	}()

	load := func(ctx context.Context) ([]Document, error) {
		return s.Snapshot(ctx, path)
	}
	teardown := func() { _ = pubsub.Close() }
	return newSubscription(ctx, load, notify, teardown), nil
}
