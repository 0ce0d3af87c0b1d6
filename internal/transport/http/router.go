package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/streamcart/signal-service/internal/relay"
	"github.com/streamcart/signal-service/pkg/httputil"
	"github.com/streamcart/signal-service/pkg/metrics"
)

func NewRouter(h *Handler, wsServer *relay.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewareChi.RealIP)
	r.Use(httputil.MiddlewareRequestID)
	r.Use(httputil.MiddlewareLogging)
	r.Use(middlewareChi.Recoverer)
	r.Use(cors.Handler(cors.Options{
		// the original relay served origin:* too
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", httputil.HeaderRequestID},
	}))

	// push mode
	r.Get("/ws", wsServer.HandleWS)

	// poll mode + chat
	r.Group(func(pr chi.Router) {
		pr.Use(middlewareChi.Timeout(30 * time.Second))

		pr.HandleFunc("/api/webrtc-signal", h.Signal)
		pr.HandleFunc("/api/chat", h.Chat)
		pr.Get("/api/ice-config", h.ICEConfig)
	})

	// status surfaces
	r.Get("/rooms", h.ActiveRooms)
	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}
