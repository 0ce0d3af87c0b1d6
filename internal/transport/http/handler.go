package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/streamcart/signal-service/internal/domain"
	"github.com/streamcart/signal-service/internal/mailbox"
	"github.com/streamcart/signal-service/internal/registry"
	"github.com/streamcart/signal-service/internal/service"
	"github.com/streamcart/signal-service/pkg/httputil"
	"github.com/streamcart/signal-service/pkg/metrics"
)

type Handler struct {
	signals  mailbox.Store
	chatSvc  *service.ChatService
	registry *registry.Registry
	stunURL  string
}

func NewHandler(signals mailbox.Store, chat *service.ChatService, reg *registry.Registry, stunURL string) *Handler {
	return &Handler{
		signals:  signals,
		chatSvc:  chat,
		registry: reg,
		stunURL:  stunURL,
	}
}

// /api/webrtc-signal?action=... — the poll-mode rendezvous API. Clients
// that cannot hold a websocket open exchange the same payloads here.
func (h *Handler) Signal(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("action") {
	case "send-offer":
		h.sendSignal(w, r, domain.SignalOffer)
	case "get-offer":
		h.getSignal(w, r, domain.SignalOffer)
	case "send-answer":
		h.sendSignal(w, r, domain.SignalAnswer)
	case "get-answer":
		h.getSignal(w, r, domain.SignalAnswer)
	case "send-ice":
		h.sendSignal(w, r, domain.SignalICE)
	case "get-ice":
		h.getSignals(w, r, domain.SignalICE)
	case "clear":
		h.clearRoom(w, r)
	default:
		httputil.Error(w, http.StatusBadRequest, "Invalid action")
	}
}

func (h *Handler) sendSignal(w http.ResponseWriter, r *http.Request, kind domain.SignalKind) {
	var req SendSignalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Room == "" || len(req.Signal) == 0 {
		httputil.Error(w, http.StatusBadRequest, "Missing parameters")
		return
	}

	if err := h.signals.Put(r.Context(), req.Room, kind, req.Peer, req.Signal); err != nil {
		h.signalError(w, r, "put", kind, err)
		return
	}
	metrics.MailboxOps.WithLabelValues("put", string(kind)).Inc()

	httputil.JSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// getSignal answers the latest unary signal, or null when there is none —
// absence is a normal outcome in a rendezvous pattern, not an error.
func (h *Handler) getSignal(w http.ResponseWriter, r *http.Request, kind domain.SignalKind) {
	room := r.URL.Query().Get("room")
	if room == "" {
		httputil.Error(w, http.StatusBadRequest, "Missing room parameter")
		return
	}
	peer := r.URL.Query().Get("peer")

	sig, err := h.signals.GetLatest(r.Context(), room, kind, peer)
	if err != nil {
		h.signalError(w, r, "get", kind, err)
		return
	}
	metrics.MailboxOps.WithLabelValues("get", string(kind)).Inc()

	if sig == nil {
		sig = json.RawMessage("null")
	}
	httputil.JSON(w, http.StatusOK, SignalResponse{Signal: sig})
}

func (h *Handler) getSignals(w http.ResponseWriter, r *http.Request, kind domain.SignalKind) {
	room := r.URL.Query().Get("room")
	if room == "" {
		httputil.Error(w, http.StatusBadRequest, "Missing room parameter")
		return
	}
	peer := r.URL.Query().Get("peer")

	sigs, err := h.signals.DrainAll(r.Context(), room, kind, peer)
	if err != nil {
		h.signalError(w, r, "drain", kind, err)
		return
	}
	metrics.MailboxOps.WithLabelValues("drain", string(kind)).Inc()

	if sigs == nil {
		sigs = []json.RawMessage{}
	}
	httputil.JSON(w, http.StatusOK, SignalsResponse{Signals: sigs})
}

func (h *Handler) clearRoom(w http.ResponseWriter, r *http.Request) {
	room := r.URL.Query().Get("room")
	if room == "" {
		httputil.Error(w, http.StatusBadRequest, "Missing room parameter")
		return
	}

	if err := h.signals.ClearRoom(r.Context(), room); err != nil {
		h.signalError(w, r, "clear", "", err)
		return
	}
	metrics.MailboxOps.WithLabelValues("clear", "").Inc()

	httputil.JSON(w, http.StatusOK, SuccessResponse{Success: true})
}

func (h *Handler) signalError(w http.ResponseWriter, r *http.Request, op string, kind domain.SignalKind, err error) {
	switch {
	case errors.Is(err, domain.ErrRoomRequired), errors.Is(err, domain.ErrSignalRequired):
		httputil.Error(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("mailbox "+op+" failed", "kind", kind, "path", r.URL.Path, "err", err)
		httputil.Error(w, http.StatusInternalServerError, "storage error")
	}
}

// /api/chat?action=...&room=...
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("action") {
	case "send":
		h.sendChat(w, r)
	case "fetch":
		h.fetchChat(w, r)
	case "get_last":
		h.lastChat(w, r)
	default:
		httputil.Error(w, http.StatusBadRequest, "Invalid action")
	}
}

func (h *Handler) sendChat(w http.ResponseWriter, r *http.Request) {
	room := r.URL.Query().Get("room")

	var req SendChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid json")
		return
	}

	msg, err := h.chatSvc.Append(r.Context(), room, req.Username, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomRequired),
			errors.Is(err, domain.ErrEmptyMessage),
			errors.Is(err, domain.ErrMessageTooLong):
			httputil.Error(w, http.StatusBadRequest, err.Error())
		default:
			slog.Error("chat send failed", "room", room, "err", err)
			httputil.Error(w, http.StatusInternalServerError, "storage error")
		}
		return
	}

	httputil.JSON(w, http.StatusOK, SendChatResponse{Success: true, MessageID: msg.ID})
}

func (h *Handler) fetchChat(w http.ResponseWriter, r *http.Request) {
	room := r.URL.Query().Get("room")
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}

	msgs, err := h.chatSvc.List(r.Context(), room, limit)
	if err != nil {
		if errors.Is(err, domain.ErrRoomRequired) {
			httputil.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("chat fetch failed", "room", room, "err", err)
		httputil.Error(w, http.StatusInternalServerError, "storage error")
		return
	}

	resp := ChatMessagesResponse{Messages: make([]ChatMessageItem, 0, len(msgs))}
	for _, m := range msgs {
		resp.Messages = append(resp.Messages, toChatItem(m))
	}
	httputil.JSON(w, http.StatusOK, resp)
}

func (h *Handler) lastChat(w http.ResponseWriter, r *http.Request) {
	room := r.URL.Query().Get("room")

	msg, err := h.chatSvc.Latest(r.Context(), room)
	if err != nil {
		if errors.Is(err, domain.ErrRoomRequired) {
			httputil.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("chat get_last failed", "room", room, "err", err)
		httputil.Error(w, http.StatusInternalServerError, "storage error")
		return
	}

	var item *ChatMessageItem
	if msg != nil {
		it := toChatItem(*msg)
		item = &it
	}
	httputil.JSON(w, http.StatusOK, LastChatMessageResponse{Message: item})
}

// GET /rooms
func (h *Handler) ActiveRooms(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, h.registry.ActiveRooms())
}

// GET /api/ice-config
func (h *Handler) ICEConfig(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, ICEConfigResponse{
		ICEServers: []ICEServer{{URLs: h.stunURL}},
	})
}

// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
