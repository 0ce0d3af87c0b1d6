package relay

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/streamcart/signal-service/internal/domain"
	"github.com/streamcart/signal-service/internal/registry"
	"github.com/streamcart/signal-service/pkg/metrics"
)

// ChatSvc is what the relay needs from the chat log.
type ChatSvc interface {
	Append(ctx context.Context, room, username, body string) (*domain.ChatMessage, error)
}

// Hub routes inbound events between the members of a room. It interprets
// nothing beyond the routing keys: negotiation state lives in the peers'
// own WebRTC stacks.
type Hub struct {
	registry *registry.Registry
	chatSvc  ChatSvc
	bus      *Bus // nil when running single-instance

	mu    sync.RWMutex
	conns map[string]*wsConn // connection id -> conn
}

func NewHub(reg *registry.Registry, chat ChatSvc, bus *Bus) *Hub {
	return &Hub{
		registry: reg,
		chatSvc:  chat,
		bus:      bus,
		conns:    make(map[string]*wsConn),
	}
}

func (h *Hub) addConn(c *wsConn) {
	h.mu.Lock()
	h.conns[c.id] = c
	h.mu.Unlock()
	metrics.RelayConnections.Inc()
}

// dropConn tears the connection down: it leaves every joined room and
// emits one user-left per room. Safe to call more than once.
func (h *Hub) dropConn(c *wsConn) {
	h.mu.Lock()
	_, present := h.conns[c.id]
	delete(h.conns, c.id)
	h.mu.Unlock()
	if !present {
		return
	}
	metrics.RelayConnections.Dec()

	for _, room := range h.registry.RemoveConnection(c.id) {
		h.broadcast(room, c.id, newMessage(TypeUserLeft, PeerPayload{
			Room:    room,
			UserID:  c.id,
			Viewers: h.registry.Count(room),
		}))
	}
}

// handleEvent processes one inbound event to completion before the caller
// reads the next, preserving the sender's own ordering.
func (h *Hub) handleEvent(ctx context.Context, c *wsConn, msg Message) {
	metrics.RelayEvents.WithLabelValues(msg.Type).Inc()

	switch msg.Type {
	case TypeJoinRoom:
		h.handleJoin(c, msg.Payload)
	case TypeOffer:
		h.handleOffer(c, msg.Payload)
	case TypeAnswer:
		h.handleAnswer(c, msg.Payload)
	case TypeICE:
		h.handleICE(c, msg.Payload)
	case TypeChat:
		h.handleChat(ctx, c, msg.Payload)
	case TypeTyping:
		h.handleTyping(c, msg.Payload)
	case TypeHighlight:
		h.handleHighlight(c, msg.Payload)
	default:
		// unknown events are dropped, not errors
	}
}

// handleJoin adds the sender to the room and tells the other members.
// A re-join is a registry no-op but still notifies, matching the original
// relay's behavior for reconnecting peers.
func (h *Hub) handleJoin(c *wsConn, raw json.RawMessage) {
	var p JoinPayload
	if json.Unmarshal(raw, &p) != nil || domain.SanitizeRoom(p.Room) == "" {
		h.sendError(c, "room is required")
		return
	}
	room := domain.SanitizeRoom(p.Room)

	viewers := h.registry.Join(room, c.id)
	h.broadcast(room, c.id, newMessage(TypeUserJoined, PeerPayload{
		Room:    room,
		UserID:  c.id,
		Viewers: viewers,
	}))

	slog.Debug("relay join", "room", room, "conn", c.id, "viewers", viewers)
}

func (h *Hub) handleOffer(c *wsConn, raw json.RawMessage) {
	var p OfferPayload
	if json.Unmarshal(raw, &p) != nil || p.Room == "" || len(p.Offer) == 0 {
		h.sendError(c, "room and offer are required")
		return
	}
	// simultaneous offers are not deduplicated: the receiving peer's own
	// stack resolves last-wins
	p.From = c.id
	h.broadcast(domain.SanitizeRoom(p.Room), c.id, newMessage(TypeOffer, p))
}

// handleAnswer unicasts to the addressed connection. An unknown target is
// dropped silently: delivery is fire-and-forget.
func (h *Hub) handleAnswer(c *wsConn, raw json.RawMessage) {
	var p AnswerPayload
	if json.Unmarshal(raw, &p) != nil || p.To == "" || len(p.Answer) == 0 {
		h.sendError(c, "to and answer are required")
		return
	}
	p.From = c.id
	h.unicast(p.To, newMessage(TypeAnswer, p))
}

func (h *Hub) handleICE(c *wsConn, raw json.RawMessage) {
	var p ICEPayload
	if json.Unmarshal(raw, &p) != nil || p.Room == "" || len(p.Candidate) == 0 {
		h.sendError(c, "room and candidate are required")
		return
	}
	p.From = c.id
	h.broadcast(domain.SanitizeRoom(p.Room), c.id, newMessage(TypeICE, p))
}

// handleChat appends to the chat log first, then broadcasts the stored
// record to the whole room, sender included.
func (h *Hub) handleChat(ctx context.Context, c *wsConn, raw json.RawMessage) {
	var p ChatInPayload
	if json.Unmarshal(raw, &p) != nil || p.Room == "" {
		h.sendError(c, "room is required")
		return
	}
	room := domain.SanitizeRoom(p.Room)

	msg, err := h.chatSvc.Append(ctx, room, p.Username, p.Message)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyMessage),
			errors.Is(err, domain.ErrMessageTooLong),
			errors.Is(err, domain.ErrRoomRequired):
			h.sendError(c, err.Error())
		default:
			slog.Error("relay chat append failed", "room", room, "err", err)
			h.sendError(c, "storage error")
		}
		return
	}

	h.broadcast(room, "", newMessage(TypeChat, ChatOutPayload{
		ID:        msg.ID,
		UserID:    c.id,
		Username:  msg.Username,
		Message:   msg.Body,
		Timestamp: msg.CreatedAt.UTC().Format(time.RFC3339),
	}))
}

// typing indicators are ephemeral and never logged.
func (h *Hub) handleTyping(c *wsConn, raw json.RawMessage) {
	var p TypingPayload
	if json.Unmarshal(raw, &p) != nil || p.Room == "" {
		return
	}
	p.UserID = c.id
	h.broadcast(domain.SanitizeRoom(p.Room), c.id, newMessage(TypeUserTyping, p))
}

func (h *Hub) handleHighlight(c *wsConn, raw json.RawMessage) {
	var p HighlightPayload
	if json.Unmarshal(raw, &p) != nil || p.Room == "" || len(p.ProductID) == 0 {
		h.sendError(c, "room and productId are required")
		return
	}
	h.broadcast(domain.SanitizeRoom(p.Room), c.id, newMessage(TypeProductHighlighted, p))
}

// broadcast fans a message out to every member of the room except the
// connection id in except ("" sends to everyone). Delivery is best-effort.
func (h *Hub) broadcast(room, except string, msg Message) {
	h.mu.RLock()
	for _, id := range h.registry.Members(room) {
		if id == except {
			continue
		}
		if c, ok := h.conns[id]; ok {
			_ = c.Send(msg)
		}
	}
	h.mu.RUnlock()

	if h.bus != nil {
		h.bus.PublishRoom(room, msg)
	}
}

// unicast delivers to a single connection; unreachable targets are dropped.
func (h *Hub) unicast(to string, msg Message) {
	h.mu.RLock()
	c, ok := h.conns[to]
	h.mu.RUnlock()

	if ok {
		_ = c.Send(msg)
		return
	}
	if h.bus != nil {
		h.bus.PublishDirect(to, msg)
	}
}

func (h *Hub) sendError(c *wsConn, msg string) {
	_ = c.Send(newMessage(TypeError, ErrorPayload{Error: msg}))
}

// deliverLocal is the bus entry point: fan a remote instance's message out
// to local members only, without republishing.
func (h *Hub) deliverLocal(room, to string, msg Message) {
	if to != "" {
		h.mu.RLock()
		c, ok := h.conns[to]
		h.mu.RUnlock()
		if ok {
			_ = c.Send(msg)
		}
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, id := range h.registry.Members(room) {
		if c, ok := h.conns[id]; ok {
			_ = c.Send(msg)
		}
	}
}
