package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/streamcart/signal-service/config"
	"github.com/streamcart/signal-service/internal/mailbox"
	"github.com/streamcart/signal-service/internal/memory"
	"github.com/streamcart/signal-service/internal/postgres"
	"github.com/streamcart/signal-service/internal/registry"
	"github.com/streamcart/signal-service/internal/relay"
	"github.com/streamcart/signal-service/internal/service"
	httpx "github.com/streamcart/signal-service/internal/transport/http"
	"github.com/streamcart/signal-service/pkg/logger"
)

func main() {
	// --- config ---
	_ = godotenv.Load()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting signal-service",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	ctx := context.Background()

	// --- chat log ---
	var chatStore service.ChatStore
	if cfg.Postgres.DSN != "" {
		db, err := postgres.New(ctx, postgres.Config{
			DSN:             cfg.Postgres.DSN,
			MaxConns:        cfg.Postgres.MaxConns,
			ApplicationName: cfg.Logging.Service,
		})
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer db.Close()
		if err := postgres.RunMigrations(ctx, db); err != nil {
			log.Fatalf("migrations: %v", err)
		}
		chatStore = postgres.NewChatRepository(db.Pool)
	} else {
		slog.Warn("no postgres dsn, chat log is in-memory")
		chatStore = memory.NewChatStore()
	}
	chatSvc := service.NewChatService(chatStore)

	// --- poll-mode mailbox ---
	signals, err := mailbox.NewFileStore(cfg.Mailbox.Dir)
	if err != nil {
		log.Fatalf("mailbox: %v", err)
	}

	// --- push-mode relay ---
	reg := registry.New()

	var bus *relay.Bus
	if cfg.Redis.Addr != "" {
		bus, err = relay.NewBus(ctx, cfg.Redis.Addr, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer bus.Close()
	}

	hub := relay.NewHub(reg, chatSvc, bus)
	wsServer := relay.NewServer(hub)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if bus != nil {
		go bus.Run(runCtx, hub)
	}

	// --- HTTP ---
	handler := httpx.NewHandler(signals, chatSvc, reg, cfg.WebRTC.StunURL)
	router := httpx.NewRouter(handler, wsServer)
	httpSrv := &http.Server{
		Addr:        cfg.HTTP.Addr,
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	select {
	case <-runCtx.Done():
		slog.Info("shutdown signal")
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpSrv.Shutdown(ctxShutdown)
	slog.Info("stopped")
}
