package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/heliohq/mpc/internal/config"
	"github.com/heliohq/mpc/internal/domain"
	"github.com/heliohq/mpc/internal/llm"
	"github.com/heliohq/mpc/internal/logger"
	"github.com/heliohq/mpc/internal/registry"
	"github.com/heliohq/mpc/internal/scraper"
	"github.com/heliohq/mpc/internal/scraper/googlejobs"
	"github.com/heliohq/mpc/internal/scraper/indeed"
	"github.com/heliohq/mpc/internal/service"
)

// One-shot pipeline run from the command line, for smoke tests and batch
// use without the HTTP server.
func main() {
	role := flag.String("role", "", "job role to search for (required)")
	location := flag.String("location", "", "location filter")
	quota := flag.Int("quota", 0, "number of postings to collect")
	radius := flag.Int("radius", 0, "search radius in km")
	area := flag.String("area", "", "area context for extraction, e.g. dados")
	asJSON := flag.Bool("json", false, "print the full extraction run as JSON")
	flag.Parse()

	if *role == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.SetDefaultLogger(logger.NewDefault())
	defer logger.Sync()

	ctx := context.Background()

	interval := cfg.Scraper.PollInterval()
	var adapters []scraper.Adapter
	for _, id := range cfg.Scraper.Priority {
		switch id {
		case indeed.ProviderID:
			adapters = append(adapters, indeed.NewAdapter(cfg.Scraper.ApifyToken, interval))
		case googlejobs.ProviderID:
			adapters = append(adapters, googlejobs.NewAdapter(cfg.Scraper.ApifyToken, interval))
		}
	}

	gemini, err := llm.NewGemini(ctx, cfg.LLM.GoogleAPIKey, cfg.LLM.GeminiModel)
	if err != nil {
		log.Fatalf("Failed to initialize Gemini: %v", err)
	}
	var models []llm.TextModel
	if gemini != nil {
		defer gemini.Close()
		models = append(models, gemini)
	}
	if claude := llm.NewClaude(cfg.LLM.AnthropicAPIKey, cfg.LLM.ClaudeModel); claude != nil {
		models = append(models, claude)
	}
	if gpt := llm.NewOpenAI(cfg.LLM.OpenAIAPIKey, cfg.LLM.OpenAIModel); gpt != nil {
		models = append(models, gpt)
	}

	reg := registry.New()
	collector := service.NewCollectorService(adapters, reg, cfg.Scraper.Deadline())
	extractor := service.NewExtractorService(llm.NewChain(models...), reg, cfg.LLM.Deadline())

	collection, err := collector.Collect(ctx, domain.JobQuery{
		Role:     *role,
		Location: *location,
		Quota:    *quota,
		RadiusKm: *radius,
	})
	if err != nil {
		log.Fatalf("Collection failed: %v", err)
	}
	fmt.Fprintf(os.Stderr, "collected %d postings from %v\n", len(collection.Postings), collection.SourcesUsed)

	run, err := extractor.Extract(ctx, collection.ID, "", *area, nil)
	if err != nil {
		log.Fatalf("Extraction failed: %v", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(run); err != nil {
			log.Fatalf("Failed to encode run: %v", err)
		}
		return
	}

	fmt.Printf("model: %s\n\n", run.ModelUsed)
	for i, kw := range run.RankedKeywords {
		fmt.Printf("%2d. %-30s freq=%-3d %-14s score=%.3f\n",
			i+1, kw.Term, kw.Frequency, kw.Category, kw.Score)
	}
}
