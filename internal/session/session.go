package session

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// State is the per-chat conversation state for multi-step flows
// (withdrawals, admin credit wizards). It lives in Redis with a TTL so
// abandoned flows expire instead of wedging the chat.
type State struct {
	Flow string            `json:"flow"`
	Step int               `json:"step"`
	Data map[string]string `json:"data,omitempty"`
}

func (s *State) Set(key, value string) {
	if s.Data == nil {
		s.Data = map[string]string{}
	}
	s.Data[key] = value
}

func (s *State) Get(key string) string {
	return s.Data[key]
}

// Store keeps conversation state and rate-limit counters in Redis.
// A nil client makes every operation a no-op (sessions lost, limits
// fail-open); the bot stays usable without Redis.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis. An empty addr or a failed ping yields a
// degraded store rather than an error.
func New(addr, password string, db int, ttl time.Duration) *Store {
	if addr == "" {
		return &Store{ttl: ttl}
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return &Store{ttl: ttl}
	}
	return &Store{client: client, ttl: ttl}
}

// Available reports whether Redis is reachable behind this store.
func (s *Store) Available() bool {
	return s.client != nil
}

func sessionKey(chatID int64) string {
	return "sess:" + strconv.FormatInt(chatID, 10)
}

// GetState returns the chat's current flow state, or nil when there is
// none (or Redis is down).
func (s *Store) GetState(ctx context.Context, chatID int64) (*State, error) {
	if s.client == nil {
		return nil, nil
	}
	raw, err := s.client.Get(ctx, sessionKey(chatID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// SetState stores the chat's flow state and refreshes its TTL.
func (s *Store) SetState(ctx context.Context, chatID int64, st *State) error {
	if s.client == nil {
		return nil
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(chatID), raw, s.ttl).Err()
}

// ClearState drops the chat's flow state.
func (s *Store) ClearState(ctx context.Context, chatID int64) error {
	if s.client == nil {
		return nil
	}
	return s.client.Del(ctx, sessionKey(chatID)).Err()
}
