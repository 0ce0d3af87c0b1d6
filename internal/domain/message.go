package domain

import "time"

type ChatMessage struct {
	ID        int64     `db:"id"`
	Room      string    `db:"room_id"`
	Username  string    `db:"username"`
	Body      string    `db:"message"`
	CreatedAt time.Time `db:"created_at"`
}
