package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gemchat-backend/internal/config"
	"gemchat-backend/internal/database"
	"gemchat-backend/internal/handlers"
	"gemchat-backend/internal/router"
	"gemchat-backend/internal/services"
	"gemchat-backend/internal/session"
	"gemchat-backend/internal/websocket"

	"github.com/redis/go-redis/v9"
)

func main() {
	log.Println("🚀 Starting GemChat Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Connect Redis (optional) ────
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		var err error
		redisClient, err = database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("✗ Redis connection failed: %v", err)
		}
		defer redisClient.Close()
		log.Println("✓ Redis connected (multi-instance status fan-out)")
	} else {
		log.Println("✓ Redis not configured, status events delivered in-process")
	}

	// ──── Step 3: Initialize Session Store ────
	store := session.NewStore(cfg.SessionTTL)
	defer store.Close()
	log.Printf("✓ Session store ready (TTL %s)", cfg.SessionTTL)

	// ──── Step 4: Initialize Gemini Adapter ────
	resolver := config.NewResolver(cfg.SecretsFile)
	geminiService := services.NewGeminiService(cfg.GeminiConcurrentReqs)
	if _, err := resolver.ResolveKey(""); err != nil {
		log.Println("⚠ No GEMINI_API_KEY found in secrets file or environment; keys must come from the UI")
	} else {
		log.Println("✓ Gemini API key available")
	}

	// ──── Step 5: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClient, cfg.WSTokenSecret)
	log.Println("✓ WebSocket hub started")

	// ──── Initialize Handlers ────
	sessionHandler := handlers.NewSessionHandler(store, resolver, wsHub, cfg.SessionTTL)
	chatHandler := handlers.NewChatHandler(store, resolver, geminiService, wsHub)
	modelHandler := handlers.NewModelListHandler(resolver, geminiService)

	// ──── Step 6: Start HTTP Server ────
	r := router.New(
		sessionHandler,
		chatHandler,
		modelHandler,
		wsHub,
		cfg.FrontendURL,
		cfg.ChatRequestsPerMin,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // model round trips can be slow
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ GemChat Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
