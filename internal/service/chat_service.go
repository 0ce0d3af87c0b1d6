package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/streamcart/signal-service/internal/domain"
	"github.com/streamcart/signal-service/pkg/metrics"
)

const maxMessageLen = 4000

// ChatStore is the persistence the chat log runs on.
type ChatStore interface {
	Append(ctx context.Context, room, username, body string) (*domain.ChatMessage, error)
	List(ctx context.Context, room string, limit int) ([]domain.ChatMessage, error)
	Latest(ctx context.Context, room string) (*domain.ChatMessage, error)
}

// ChatService validates and persists chat messages for both transports.
type ChatService struct {
	store ChatStore
}

func NewChatService(store ChatStore) *ChatService {
	return &ChatService{store: store}
}

// Append trims the body, rejects empty messages and returns the stored
// record with its server-assigned id and timestamp.
func (s *ChatService) Append(ctx context.Context, room, username, body string) (*domain.ChatMessage, error) {
	room = domain.SanitizeRoom(room)
	if room == "" {
		return nil, domain.ErrRoomRequired
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, domain.ErrEmptyMessage
	}
	if len(body) > maxMessageLen {
		return nil, domain.ErrMessageTooLong
	}

	username = strings.TrimSpace(username)
	if username == "" {
		username = "Anonymous"
	}

	msg, err := s.store.Append(ctx, room, username, body)
	if err != nil {
		return nil, fmt.Errorf("chat append: %w", err)
	}
	metrics.ChatMessages.Inc()
	return msg, nil
}

// List returns up to limit messages, oldest first; the store caps the window.
func (s *ChatService) List(ctx context.Context, room string, limit int) ([]domain.ChatMessage, error) {
	room = domain.SanitizeRoom(room)
	if room == "" {
		return nil, domain.ErrRoomRequired
	}
	return s.store.List(ctx, room, limit)
}

// Latest returns the newest message, or nil when the room has none.
func (s *ChatService) Latest(ctx context.Context, room string) (*domain.ChatMessage, error) {
	room = domain.SanitizeRoom(room)
	if room == "" {
		return nil, domain.ErrRoomRequired
	}
	return s.store.Latest(ctx, room)
}
