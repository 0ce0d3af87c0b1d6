package memory

import (
	"context"
	"sync"
	"time"

	"github.com/streamcart/signal-service/internal/domain"
)

const maxChatWindow = 100

// ChatStore is the in-memory chat log used when no database is configured
// (dev mode) and by tests. Ids are strictly increasing across all rooms.
type ChatStore struct {
	mu     sync.Mutex
	nextID int64
	rooms  map[string][]domain.ChatMessage
}

func NewChatStore() *ChatStore {
	return &ChatStore{nextID: 1, rooms: make(map[string][]domain.ChatMessage)}
}

func (s *ChatStore) Append(ctx context.Context, room, username, body string) (*domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := domain.ChatMessage{
		ID:        s.nextID,
		Room:      room,
		Username:  username,
		Body:      body,
		CreatedAt: time.Now(),
	}
	s.nextID++
	s.rooms[room] = append(s.rooms[room], m)
	return &m, nil
}

func (s *ChatStore) List(ctx context.Context, room string, limit int) ([]domain.ChatMessage, error) {
	if limit <= 0 || limit > maxChatWindow {
		limit = maxChatWindow
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.rooms[room]
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	out := make([]domain.ChatMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *ChatStore) Latest(ctx context.Context, room string) (*domain.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.rooms[room]
	if len(msgs) == 0 {
		return nil, nil
	}
	m := msgs[len(msgs)-1]
	return &m, nil
}
