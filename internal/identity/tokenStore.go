package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrTokenNotFound = errors.New("token not found or expired")

// Action modes, named after the provider's action route parameters.
const (
	ModeVerifyEmail   = "verifyEmail"
	ModeResetPassword = "resetPassword"
)

// ActionCode is the payload behind a one-time code sent by email.
type ActionCode struct {
	Mode  string `json:"mode"`
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// TokenStore keeps the short-lived auth state: sessions, action codes and
// failed sign-in counters.
type TokenStore interface {
	SaveSession(ctx context.Context, sessionID, uid string, ttl time.Duration) error
	SessionUID(ctx context.Context, sessionID string) (string, error)
	DeleteSession(ctx context.Context, sessionID string) error
	// DeleteUserSessions ends every session of uid.
	DeleteUserSessions(ctx context.Context, uid string) error

	SaveActionCode(ctx context.Context, code string, action ActionCode, ttl time.Duration) error
	// TakeActionCode returns the code payload and deletes it.
	TakeActionCode(ctx context.Context, mode, code string) (*ActionCode, error)

	// RegisterAttempt counts a sign-in attempt within window and returns the new count.
	RegisterAttempt(ctx context.Context, email string, window time.Duration) (int64, error)
	ResetFailures(ctx context.Context, email string) error
}

type redisTokenStore struct {
	client *redis.Client
	prefix string
}

func NewRedisTokenStore(client *redis.Client, prefix string) TokenStore {
	return &redisTokenStore{client: client, prefix: prefix + ":auth"}
}

func (s *redisTokenStore) sessionKey(id string) string { return s.prefix + ":session:" + id }

func (s *redisTokenStore) actionKey(mode, code string) string {
	return s.prefix + ":action:" + mode + ":" + code
}

func (s *redisTokenStore) userSessionsKey(uid string) string {
	return s.prefix + ":user:" + uid + ":sessions"
}

func (s *redisTokenStore) failuresKey(email string) string { return s.prefix + ":failures:" + email }

func (s *redisTokenStore) SaveSession(ctx context.Context, sessionID, uid string, ttl time.Duration) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.sessionKey(sessionID), uid, ttl)
		// множество живёт не меньше самой свежей сессии
		pipe.SAdd(ctx, s.userSessionsKey(uid), sessionID)
		pipe.Expire(ctx, s.userSessionsKey(uid), ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *redisTokenStore) SessionUID(ctx context.Context, sessionID string) (string, error) {
	uid, err := s.client.Get(ctx, s.sessionKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	return uid, nil
}

func (s *redisTokenStore) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *redisTokenStore) DeleteUserSessions(ctx context.Context, uid string) error {
	setKey := s.userSessionsKey(uid)

	ids, err := s.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return fmt.Errorf("list user sessions: %w", err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, s.sessionKey(id))
	}
	keys = append(keys, setKey)
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}
	return nil
}

func (s *redisTokenStore) SaveActionCode(ctx context.Context, code string, action ActionCode, ttl time.Duration) error {
	data, err := json.Marshal(action)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.actionKey(action.Mode, code), data, ttl).Err(); err != nil {
		return fmt.Errorf("save action code: %w", err)
	}
	return nil
}

func (s *redisTokenStore) TakeActionCode(ctx context.Context, mode, code string) (*ActionCode, error) {
	data, err := s.client.GetDel(ctx, s.actionKey(mode, code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("take action code: %w", err)
	}

	var action ActionCode
	if err := json.Unmarshal(data, &action); err != nil {
		return nil, fmt.Errorf("decode action code: %w", err)
	}
	return &action, nil
}

func (s *redisTokenStore) RegisterAttempt(ctx context.Context, email string, window time.Duration) (int64, error) {
	key := s.failuresKey(email)

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("count sign-in attempt: %w", err)
	}
	// окно отсчитывается от первой попытки
	if count == 1 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return count, fmt.Errorf("expire failed sign-in counter: %w", err)
		}
	}
	return count, nil
}

func (s *redisTokenStore) ResetFailures(ctx context.Context, email string) error {
	return s.client.Del(ctx, s.failuresKey(email)).Err()
}
