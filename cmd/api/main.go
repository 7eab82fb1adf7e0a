// Package main is the entry point for the chatbot API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/dkl-health/chatbot-backend/internal/catalog"
	"github.com/dkl-health/chatbot-backend/internal/config"
	"github.com/dkl-health/chatbot-backend/internal/events"
	"github.com/dkl-health/chatbot-backend/internal/handler"
	"github.com/dkl-health/chatbot-backend/internal/llm"
	"github.com/dkl-health/chatbot-backend/internal/middleware"
	"github.com/dkl-health/chatbot-backend/internal/nlp"
	"github.com/dkl-health/chatbot-backend/internal/pipeline"
	"github.com/dkl-health/chatbot-backend/internal/storage"
	"github.com/dkl-health/chatbot-backend/internal/ws"
	"github.com/dkl-health/chatbot-backend/pkg/logger"
	"github.com/dkl-health/chatbot-backend/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting chatbot API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "chatbot-backend", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Connect to MongoDB
	db, err := storage.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoTimeout, log)
	if err != nil {
		log.Error("failed to connect to MongoDB", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close(ctx)

	if err := db.EnsureIndexes(ctx); err != nil {
		log.Error("failed to ensure indexes", zap.Error(err))
		os.Exit(1)
	}

	// Stores
	conversations := storage.NewConversationStore(db)
	faqs := storage.NewFAQStore(db)
	services := storage.NewServiceStore(db)
	users := storage.NewUserStore(db)

	// Initialize LLM client
	llmClient, err := llm.NewClient(llm.Provider(cfg.DefaultLLM), cfg.OpenAIAPIKey, cfg.AnthropicAPIKey)
	if err != nil {
		log.Error("failed to create LLM client", zap.Error(err))
		os.Exit(1)
	}
	log.Info("LLM provider ready",
		zap.String("provider", llmClient.Name()),
		zap.Strings("models", llmClient.Models()),
	)

	classifier := nlp.NewClassifier(llmClient, cfg.LLMModel)
	translator := nlp.NewTranslator(llmClient, cfg.LLMModel)
	lookup := catalog.NewLookup(services, faqs, cfg.DefaultLanguage, log)

	// Optional turn-event fanout
	var turnPublisher pipeline.TurnPublisher
	if cfg.NATSURL != "" {
		pub, err := events.Connect(ctx, events.Config{URL: cfg.NATSURL, Token: cfg.NATSToken}, log)
		if err != nil {
			log.Warn("failed to connect to NATS, turn events disabled", zap.Error(err))
		} else {
			defer pub.Close()
			turnPublisher = pub
		}
	}

	// Message pipeline
	pipe := pipeline.New(pipeline.Config{
		Translator:      translator,
		Classifier:      classifier,
		Catalog:         lookup,
		Conversations:   conversations,
		Events:          turnPublisher,
		DefaultLanguage: cfg.DefaultLanguage,
		CallTimeout:     cfg.LLMTimeout,
		Logger:          log,
	})

	// Realtime gateway and handlers
	gateway := ws.NewGateway(pipe, log)
	healthHandler := handler.NewHealthHandler(db)
	authHandler := handler.NewAuthHandler(users, cfg.JWTSecret, cfg.JWTExpiration, log)
	faqHandler := handler.NewFAQHandler(faqs, lookup, log)
	serviceHandler := handler.NewServiceHandler(services, log)
	conversationHandler := handler.NewConversationHandler(conversations, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.AdminKeyHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// Realtime channel
	r.Get("/ws", gateway.Handle)

	// Public routes
	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)
	r.Get("/faqs", faqHandler.Search)

	// End-user routes (bearer token)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Get("/conversations/{sessionID}", conversationHandler.Get)
	})

	// Admin routes (shared-secret key)
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.AdminKey(cfg.AdminAPIKey))

		r.Route("/faqs", func(r chi.Router) {
			r.Post("/", faqHandler.Create)
			r.Get("/", faqHandler.List)
			r.Get("/{id}", faqHandler.Get)
			r.Put("/{id}", faqHandler.Update)
			r.Delete("/{id}", faqHandler.Delete)
		})

		r.Route("/services", func(r chi.Router) {
			r.Post("/", serviceHandler.Create)
			r.Get("/", serviceHandler.List)
			r.Get("/{id}", serviceHandler.Get)
			r.Put("/{id}", serviceHandler.Update)
			r.Delete("/{id}", serviceHandler.Delete)
		})

		r.Get("/conversations", conversationHandler.ListRecent)
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
