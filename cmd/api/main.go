package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Anamitra-Sarkar/Langchain-Chatbot/internal/config"
	"github.com/Anamitra-Sarkar/Langchain-Chatbot/internal/handler"
	"github.com/Anamitra-Sarkar/Langchain-Chatbot/internal/provider"
	"github.com/Anamitra-Sarkar/Langchain-Chatbot/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	registry := provider.New(ctx, provider.Config{
		OpenAIKey:      cfg.AI.OpenAIKey,
		HuggingFaceKey: cfg.AI.HuggingFaceKey,
		ArkAPIKey:      cfg.AI.ArkAPIKey,
		ArkModel:       cfg.AI.ArkModel,
		ArkBaseURL:     cfg.AI.ArkBaseURL,
		ArkRegion:      cfg.AI.ArkRegion,
	})
	log.Printf("default provider: %s", registry.DefaultName())

	var durable store.Store
	var probe func(context.Context) error
	if cfg.Database.Enabled() {
		sqliteStore, err := store.NewSQLiteStore(cfg.Database.URL)
		if err != nil {
			log.Printf("warning: failed to open durable store: %v", err)
			log.Println("continuing with the in-memory conversation store only")
		} else {
			defer sqliteStore.Close()
			durable = sqliteStore
			probe = sqliteStore.Ping
		}
	} else {
		log.Println("DATABASE_URL not set, conversations will not survive restarts")
	}

	conversationStore := store.NewFallbackStore(durable, probe)
	router := handler.NewRouter(conversationStore, registry)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("chat backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
