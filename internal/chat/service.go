package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/mortgage-calculator/internal/config"
	"github.com/iwvelando/mortgage-calculator/internal/metrics"
	"github.com/iwvelando/mortgage-calculator/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var (
	// ErrNotConfigured is returned when no API key is set.
	ErrNotConfigured = errors.New("chat API key is not configured")

	// ErrEmptyMessage is returned for a blank message.
	ErrEmptyMessage = errors.New("message is required")

	// ErrUpstream wraps failures of the completions API.
	ErrUpstream = errors.New("chat completion failed")
)

// Reply is the assistant's answer within a session.
type Reply struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type completionRequest struct {
	Model    string        `json:"model"`
	Messages []wireMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionResponse struct {
	Choices []struct {
		Message wireMessage `json:"message"`
	} `json:"choices"`
}

// Service sends messages to the completions API.
type Service struct {
	conf    config.ChatConfig
	store   SessionStore
	client  *http.Client
	metrics *metrics.Metrics
	logger  *zap.Logger
	newID   func() string
	now     func() time.Time
}

// NewService creates a chat service. A nil client uses one with the
// configured timeout.
func NewService(conf config.ChatConfig, store SessionStore, client *http.Client, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client == nil {
		timeout := conf.Timeout
		if timeout <= 0 {
			timeout = time.Minute
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Service{
		conf:    conf,
		store:   store,
		client:  client,
		metrics: m,
		logger:  logger,
		newID:   uuid.NewString,
		now:     time.Now,
	}
}

// Configured reports whether an API key is set.
func (s *Service) Configured() bool {
	return s.conf.APIKey != ""
}

// Send appends message to the session's history, asks the completions API
// for a reply and stores it. An empty sessionID starts a new session.
func (s *Service) Send(ctx context.Context, sessionID, message string) (Reply, error) {
	ctx, span := tracing.Tracer().Start(ctx, "chat.Send")
	defer span.End()

	if strings.TrimSpace(message) == "" {
		return Reply{}, ErrEmptyMessage
	}
	if !s.Configured() {
		return Reply{}, ErrNotConfigured
	}
	if sessionID == "" {
		sessionID = s.newID()
	}
	span.SetAttributes(attribute.String("chat.session", sessionID))

	history, err := s.store.History(ctx, sessionID)
	if err != nil {
		s.logger.Warn("failed to load chat history, starting fresh",
			zap.String("op", "chat.Send"),
			zap.String("sessionId", sessionID),
			zap.Error(err),
		)
		history = nil
	}
	history = append(history, Message{Role: RoleUser, Content: message, Timestamp: s.now().UTC()})

	answer, err := s.complete(ctx, s.prompt(history))
	s.metrics.ObserveUpstream("chat", err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		return Reply{}, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	history = append(history, Message{Role: RoleAssistant, Content: answer, Timestamp: s.now().UTC()})
	history = trim(history, s.conf.HistoryLimit)
	if err := s.store.Save(ctx, sessionID, history); err != nil {
		s.logger.Warn("failed to save chat history",
			zap.String("op", "chat.Send"),
			zap.String("sessionId", sessionID),
			zap.Error(err),
		)
	}

	return Reply{SessionID: sessionID, Message: answer}, nil
}

// prompt is the system prompt followed by the conversation so far.
func (s *Service) prompt(history []Message) []wireMessage {
	messages := make([]wireMessage, 0, len(history)+1)
	if s.conf.SystemPrompt != "" {
		messages = append(messages, wireMessage{Role: RoleSystem, Content: s.conf.SystemPrompt})
	}
	for _, m := range history {
		messages = append(messages, wireMessage{Role: m.Role, Content: m.Content})
	}
	return messages
}

func (s *Service) complete(ctx context.Context, messages []wireMessage) (string, error) {
	body, err := json.Marshal(completionRequest{Model: s.conf.Model, Messages: messages})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.conf.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.conf.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		s.logger.Error("chat completions API returned an error",
			zap.String("op", "chat.complete"),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", truncate(raw, 512)),
		)
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var parsed completionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("invalid response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("response has no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// trim keeps the most recent limit messages. A non-positive limit keeps all.
func trim(history []Message, limit int) []Message {
	if limit <= 0 || len(history) <= limit {
		return history
	}
	return history[len(history)-limit:]
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
