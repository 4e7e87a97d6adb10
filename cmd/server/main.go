package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"newsqa-orchestrator/internal/adapter/archive"
	"newsqa-orchestrator/internal/adapter/augur"
	"newsqa-orchestrator/internal/adapter/newsqa_http"
	"newsqa-orchestrator/internal/adapter/repository"
	"newsqa-orchestrator/internal/domain"
	"newsqa-orchestrator/internal/infra"
	"newsqa-orchestrator/internal/infra/config"
	"newsqa-orchestrator/internal/infra/httpclient"
	"newsqa-orchestrator/internal/infra/logger"
	"newsqa-orchestrator/internal/usecase"
)

func main() {
	// 1. Load Config
	cfg := config.Load()

	// 2. Initialize Logger
	log := logger.New()
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// 3. Initialize DB
	dbPool, err := infra.NewPostgresDB(context.Background(), cfg.DSN()+"?sslmode=disable")
	if err != nil {
		log.Error("failed to connect to db", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Initialize Adapters
	embedder := augur.NewOllamaEmbedder(cfg.OllamaURL, cfg.EmbeddingModel, 0)
	embedder.Client = httpclient.NewPooledClient(30 * time.Second)

	generator := augur.NewOllamaGenerator(cfg.OllamaURL, cfg.GenerationModel)
	generator.Client = httpclient.NewPooledClient(120 * time.Second)

	webSearch := augur.NewWebSearchClient(cfg.WebSearchURL, cfg.WebSearchAPIKey)
	webSearch.Client = httpclient.NewPooledClient(60 * time.Second)

	retriever := repository.NewPassageRepository(dbPool, embedder, cfg.KnowledgeBaseID)

	store := archive.NewHTTPStore(cfg.ArchiveGatewayURL)
	store.Client = httpclient.NewPooledClient(30 * time.Second)
	cachedStore, err := archive.NewCachedStore(store, cfg.DocumentCacheSize)
	if err != nil {
		log.Error("failed to create document cache", "error", err)
		os.Exit(1)
	}

	// 5. Initialize Usecases
	classifier := domain.NewQueryClassifier()
	resolver := usecase.NewMetadataResolver(cachedStore, cfg.DefaultOutlet, log)
	prompts := usecase.NewPromptBuilder(usecase.GenerationMode(cfg.GenerationMode))
	composer := usecase.NewAnswerComposer(cfg.AppendMarkers, log)

	orchestrator := usecase.NewSearchOrchestrator(
		classifier,
		retriever,
		generator,
		webSearch,
		resolver,
		prompts,
		composer,
		usecase.OrchestratorConfig{
			AttemptBudget:    cfg.AttemptBudget,
			RetrievalK:       cfg.RetrievalK,
			DateRelevanceMin: cfg.DateRelevanceMin,
			SourceFloor:      cfg.SourceFloor,
			AnswerMaxTokens:  cfg.AnswerMaxTokens,
		},
		log,
	)

	// 6. Initialize Echo
	e := echo.New()
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error == nil {
				log.Info("request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				log.Error("request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	}))
	e.Use(middleware.Recover())

	// 7. Register Handlers
	handler := newsqa_http.NewHandler(orchestrator, cfg.KnowledgeBaseID)
	handler.Register(e)

	e.GET("/readyz", func(c echo.Context) error {
		if err := dbPool.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "db down", "error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
	})

	// 8. Start Server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Info("Starting server", "addr", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server")
		}
	}()

	// 9. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal(err)
	}
}
