package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/iwvelando/mortgage-calculator/internal/cache"
	"github.com/iwvelando/mortgage-calculator/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompletions struct {
	mu       sync.Mutex
	requests []completionRequest
	auth     string
	status   int
	reply    string
}

func (f *fakeCompletions) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var req completionRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	f.requests = append(f.requests, req)
	f.auth = r.Header.Get("Authorization")

	if f.status != 0 && f.status != http.StatusOK {
		http.Error(w, `{"error":"boom"}`, f.status)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": f.reply}},
		},
	})
}

func newTestService(t *testing.T, upstream *fakeCompletions, mutate func(*config.ChatConfig)) (*Service, *CacheSessionStore) {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	conf := config.Default().Chat
	conf.APIKey = "test-key"
	conf.Endpoint = srv.URL
	if mutate != nil {
		mutate(&conf)
	}
	store := NewCacheSessionStore(cache.NewMemory(), time.Hour)
	svc := NewService(conf, store, srv.Client(), nil, nil)
	return svc, store
}

func TestSendStartsSessionAndKeepsHistory(t *testing.T) {
	upstream := &fakeCompletions{reply: "Hello, I am Jarvis."}
	svc, store := newTestService(t, upstream, nil)
	svc.newID = func() string { return "session-1" }

	reply, err := svc.Send(context.Background(), "", "Hi")
	require.NoError(t, err)
	assert.Equal(t, "session-1", reply.SessionID)
	assert.Equal(t, "Hello, I am Jarvis.", reply.Message)
	assert.Equal(t, "Bearer test-key", upstream.auth)

	require.Len(t, upstream.requests, 1)
	first := upstream.requests[0]
	assert.Equal(t, "deepseek-chat", first.Model)
	assert.False(t, first.Stream)
	require.Len(t, first.Messages, 2)
	assert.Equal(t, RoleSystem, first.Messages[0].Role)
	assert.Equal(t, "Hi", first.Messages[1].Content)

	upstream.reply = "Sure."
	_, err = svc.Send(context.Background(), "session-1", "Another question")
	require.NoError(t, err)

	second := upstream.requests[1]
	require.Len(t, second.Messages, 4, "system prompt plus three stored turns")
	assert.Equal(t, RoleAssistant, second.Messages[2].Role)
	assert.Equal(t, "Hello, I am Jarvis.", second.Messages[2].Content)

	history, err := store.History(context.Background(), "session-1")
	require.NoError(t, err)
	assert.Len(t, history, 4)
}

func TestSendValidation(t *testing.T) {
	svc, _ := newTestService(t, &fakeCompletions{}, nil)
	_, err := svc.Send(context.Background(), "s", "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	unconfigured, _ := newTestService(t, &fakeCompletions{}, func(c *config.ChatConfig) { c.APIKey = "" })
	assert.False(t, unconfigured.Configured())
	_, err = unconfigured.Send(context.Background(), "s", "Hi")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSendUpstreamFailureKeepsHistoryUnchanged(t *testing.T) {
	upstream := &fakeCompletions{status: http.StatusBadGateway}
	svc, store := newTestService(t, upstream, nil)

	_, err := svc.Send(context.Background(), "s", "Hi")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)

	history, err := store.History(context.Background(), "s")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSendTrimsHistory(t *testing.T) {
	upstream := &fakeCompletions{reply: "ok"}
	svc, store := newTestService(t, upstream, func(c *config.ChatConfig) { c.HistoryLimit = 4 })

	for i := 0; i < 3; i++ {
		_, err := svc.Send(context.Background(), "s", "question")
		require.NoError(t, err)
	}
	history, err := store.History(context.Background(), "s")
	require.NoError(t, err)
	assert.Len(t, history, 4)
	assert.Len(t, upstream.requests[2].Messages, 6, "system prompt plus four kept turns plus the new question")
}

func TestTrim(t *testing.T) {
	history := []Message{{Content: "a"}, {Content: "b"}, {Content: "c"}}
	assert.Len(t, trim(history, 0), 3)
	assert.Len(t, trim(history, 5), 3)
	assert.Equal(t, []Message{{Content: "b"}, {Content: "c"}}, trim(history, 2))
}
