package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Skotchmaster/ecom/internal/app"
	"github.com/Skotchmaster/ecom/internal/repo"
	"github.com/Skotchmaster/ecom/internal/search"
	"github.com/Skotchmaster/ecom/pkg/config"
	pkgdb "github.com/Skotchmaster/ecom/pkg/db"
	"github.com/Skotchmaster/ecom/pkg/events"
	"github.com/Skotchmaster/ecom/pkg/logging"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmpty(cfg.JWTSecret, "JWT_SECRET")

	logger := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile}).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		cancel()
		log.Fatalf("db open: %v", err)
	}

	publisher := newPublisher(cfg, logger)

	engine, err := newSearchEngine(ctx, cfg, &repo.GormRepo{DB: db})
	if err != nil {
		cancel()
		log.Fatalf("search: %v", err)
	}

	a, err := app.New(ctx, app.Options{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Events: publisher,
		Search: engine,
	})
	cancel()
	if err != nil {
		log.Fatalf("app: %v", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           a.Echo,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("http_listen", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_shutdown_failed", "error", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Error("events_close_failed", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("shop stopped")
}

func newPublisher(cfg config.Config, logger *slog.Logger) events.Publisher {
	brokers := cfg.Brokers()
	if len(brokers) == 0 {
		logger.Info("events_disabled", "reason", "KAFKA_BROKERS is empty")
		return events.Noop{}
	}
	p, err := events.NewKafkaProducer(brokers)
	if err != nil {
		logger.Warn("events_disabled", "reason", "cannot create kafka producer", "error", err)
		return events.Noop{}
	}
	return p
}

func newSearchEngine(ctx context.Context, cfg config.Config, r *repo.GormRepo) (search.Engine, error) {
	if cfg.ESURL == "" {
		return &search.SQLEngine{Repo: r}, nil
	}
	client, err := search.NewClient(search.ESConfig{
		URL:      cfg.ESURL,
		User:     cfg.ESUser,
		Password: cfg.ESPassword,
	})
	if err != nil {
		return nil, err
	}
	engine := &search.ESEngine{Client: client, IndexName: cfg.ESIndex, Repo: r}
	if err := engine.EnsureIndex(ctx); err != nil {
		return nil, err
	}
	return engine, nil
}
