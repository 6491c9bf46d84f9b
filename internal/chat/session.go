// Package chat proxies conversations to a chat completions API, keeping
// per-session history.
package chat

import (
	"context"
	"time"

	"github.com/iwvelando/mortgage-calculator/internal/cache"
)

// Roles used in a conversation.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionStore persists conversation history by session id.
type SessionStore interface {
	History(ctx context.Context, sessionID string) ([]Message, error)
	Save(ctx context.Context, sessionID string, history []Message) error
}

// CacheSessionStore keeps sessions in a cache.Cache, so history lives in
// Redis when one is configured and in memory otherwise.
type CacheSessionStore struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewCacheSessionStore stores sessions in c. Idle sessions expire after ttl.
func NewCacheSessionStore(c cache.Cache, ttl time.Duration) *CacheSessionStore {
	return &CacheSessionStore{cache: c, ttl: ttl}
}

func sessionKey(id string) string {
	return "chat:session:" + id
}

func (s *CacheSessionStore) History(ctx context.Context, sessionID string) ([]Message, error) {
	var history []Message
	if _, err := cache.GetJSON(ctx, s.cache, sessionKey(sessionID), &history); err != nil {
		return nil, err
	}
	return history, nil
}

func (s *CacheSessionStore) Save(ctx context.Context, sessionID string, history []Message) error {
	return cache.SetJSON(ctx, s.cache, sessionKey(sessionID), history, s.ttl)
}
