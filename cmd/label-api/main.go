package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"labelsim/internal/api"
	"labelsim/internal/config"
	"labelsim/internal/content"
	"labelsim/internal/db"
	"labelsim/internal/game"
	"labelsim/internal/notify"
	"labelsim/internal/store/postgres"
	"labelsim/internal/store/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadAPIFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	pack, err := content.Load(cfg.ContentPath)
	if err != nil {
		logger.Error("load content failed", "path", cfg.ContentPath, "err", err)
		os.Exit(1)
	}

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("store init failed", "store", cfg.Store, "err", err)
		os.Exit(1)
	}
	defer closeStore()

	gameSvc := game.NewService(store, pack, logger)
	if cfg.DiscordToken != "" {
		announcer, err := notify.NewDiscord(cfg.DiscordToken, cfg.DiscordChannelID, logger)
		if err != nil {
			logger.Error("discord init failed", "err", err)
			os.Exit(1)
		}
		gameSvc.SetAnnouncer(announcer)
	}

	hub := api.NewHub(logger)
	go hub.Run(ctx)

	server := api.New(logger, gameSvc, hub)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("label api listening", "addr", cfg.Addr, "store", cfg.Store)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg config.APIConfig, logger *slog.Logger) (game.TxRunner, func(), error) {
	switch cfg.Store {
	case config.StoreSQLite:
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.StoreMemory:
		logger.Warn("using in-memory store, games are lost on restart")
		return game.NewMemoryStore(), func() {}, nil
	default:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return postgres.New(pool, logger), pool.Close, nil
	}
}
