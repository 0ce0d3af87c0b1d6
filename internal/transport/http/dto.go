package http

import (
	"encoding/json"
	"time"

	"github.com/streamcart/signal-service/internal/domain"
)

type SendSignalRequest struct {
	Room   string          `json:"room"`
	Signal json.RawMessage `json:"signal"`
	Peer   string          `json:"peer,omitempty"`
}

type SignalResponse struct {
	Signal json.RawMessage `json:"signal"`
}

type SignalsResponse struct {
	Signals []json.RawMessage `json:"signals"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type SendChatRequest struct {
	Message  string `json:"message"`
	Username string `json:"username"`
}

type SendChatResponse struct {
	Success   bool  `json:"success"`
	MessageID int64 `json:"message_id"`
}

type ChatMessageItem struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

type ChatMessagesResponse struct {
	Messages []ChatMessageItem `json:"messages"`
}

type LastChatMessageResponse struct {
	Message *ChatMessageItem `json:"message"`
}

type ICEConfigResponse struct {
	ICEServers []ICEServer `json:"iceServers"`
}

type ICEServer struct {
	URLs string `json:"urls"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func toChatItem(m domain.ChatMessage) ChatMessageItem {
	return ChatMessageItem{
		ID:        m.ID,
		Username:  m.Username,
		Message:   m.Body,
		CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339),
	}
}
