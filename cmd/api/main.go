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

	"github.com/heliohq/mpc/internal/api"
	"github.com/heliohq/mpc/internal/config"
	"github.com/heliohq/mpc/internal/llm"
	"github.com/heliohq/mpc/internal/logger"
	"github.com/heliohq/mpc/internal/registry"
	"github.com/heliohq/mpc/internal/scraper"
	"github.com/heliohq/mpc/internal/scraper/googlejobs"
	"github.com/heliohq/mpc/internal/scraper/indeed"
	"github.com/heliohq/mpc/internal/service"
)

func main() {
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.SetDefaultLogger(logger.NewDefault())
	defer logger.Sync()

	ctx := context.Background()

	adapters := buildAdapters(cfg)
	if cfg.Scraper.ApifyToken == "" {
		logger.Warn("APIFY_API_TOKEN not set, collections will use synthetic postings")
	}

	chain, models, geminiClose, err := buildChain(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize model chain: %v", err)
	}
	defer geminiClose()
	if chain.Empty() {
		logger.Warn("no model credential set, extraction will use the lexicon fallback")
	}

	reg := registry.New()
	collector := service.NewCollectorService(adapters, reg, cfg.Scraper.Deadline())
	extractor := service.NewExtractorService(chain, reg, cfg.LLM.Deadline())

	router := api.SetupRouter(collector, extractor, cfg, models)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting API server on port %d (mode=%s)", cfg.Server.Port, cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

// buildAdapters wires the scraper providers in configured priority order.
func buildAdapters(cfg *config.Config) []scraper.Adapter {
	interval := cfg.Scraper.PollInterval()

	var adapters []scraper.Adapter
	for _, id := range cfg.Scraper.Priority {
		switch id {
		case indeed.ProviderID:
			adapters = append(adapters, indeed.NewAdapter(cfg.Scraper.ApifyToken, interval))
		case googlejobs.ProviderID:
			adapters = append(adapters, googlejobs.NewAdapter(cfg.Scraper.ApifyToken, interval))
		default:
			logger.Warn("unknown scraper provider %q in priority list, skipping", id)
		}
	}
	return adapters
}

// buildChain wires the model fallback chain from whatever credentials are
// configured. Returns the chain, the configured model names in order, and
// a close function for the Gemini client.
func buildChain(ctx context.Context, cfg *config.Config) (*llm.Chain, []string, func(), error) {
	gemini, err := llm.NewGemini(ctx, cfg.LLM.GoogleAPIKey, cfg.LLM.GeminiModel)
	if err != nil {
		return nil, nil, nil, err
	}
	claude := llm.NewClaude(cfg.LLM.AnthropicAPIKey, cfg.LLM.ClaudeModel)
	gpt := llm.NewOpenAI(cfg.LLM.OpenAIAPIKey, cfg.LLM.OpenAIModel)

	var models []string
	var chainModels []llm.TextModel
	if gemini != nil {
		chainModels = append(chainModels, gemini)
		models = append(models, gemini.Name())
	}
	if claude != nil {
		chainModels = append(chainModels, claude)
		models = append(models, claude.Name())
	}
	if gpt != nil {
		chainModels = append(chainModels, gpt)
		models = append(models, gpt.Name())
	}

	closeFn := func() {}
	if gemini != nil {
		closeFn = func() { _ = gemini.Close() }
	}
	return llm.NewChain(chainModels...), models, closeFn, nil
}
