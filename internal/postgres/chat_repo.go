package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/streamcart/signal-service/internal/domain"
)

// maxChatWindow caps every history read regardless of the requested limit.
const maxChatWindow = 100

type ChatRepository struct {
	db *pgxpool.Pool
}

func NewChatRepository(db *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) Append(ctx context.Context, room, username, body string) (*domain.ChatMessage, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO chat_messages (room_id, username, message)
		VALUES ($1, $2, $3)
		RETURNING id, room_id, username, message, created_at
	`, room, username, body)

	var m domain.ChatMessage
	if err := row.Scan(&m.ID, &m.Room, &m.Username, &m.Body, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns up to limit messages for the room, oldest first.
func (r *ChatRepository) List(ctx context.Context, room string, limit int) ([]domain.ChatMessage, error) {
	if limit <= 0 || limit > maxChatWindow {
		limit = maxChatWindow
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, room_id, username, message, created_at
		FROM chat_messages
		WHERE room_id = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2
	`, room, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(&m.ID, &m.Room, &m.Username, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Latest returns the most recent message for the room, or nil when the room
// has no messages yet.
func (r *ChatRepository) Latest(ctx context.Context, room string) (*domain.ChatMessage, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, room_id, username, message, created_at
		FROM chat_messages
		WHERE room_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, room)

	var m domain.ChatMessage
	if err := row.Scan(&m.ID, &m.Room, &m.Username, &m.Body, &m.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}
