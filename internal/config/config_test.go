package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.Scraper.PollIntervalSeconds != 10 {
		t.Errorf("poll interval = %d, want 10", cfg.Scraper.PollIntervalSeconds)
	}
	if len(cfg.Scraper.Priority) != 2 || cfg.Scraper.Priority[0] != "indeed" {
		t.Errorf("priority = %v", cfg.Scraper.Priority)
	}
	if cfg.LLM.GeminiModel == "" || cfg.LLM.ClaudeModel == "" || cfg.LLM.OpenAIModel == "" {
		t.Error("model defaults missing")
	}
}

func TestLoadEnvBindings(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("APIFY_API_TOKEN", "apify-tok")
	t.Setenv("GOOGLE_API_KEY", "g-key")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Scraper.ApifyToken != "apify-tok" {
		t.Errorf("apify token = %q", cfg.Scraper.ApifyToken)
	}
	if cfg.LLM.GoogleAPIKey != "g-key" {
		t.Errorf("google key = %q", cfg.LLM.GoogleAPIKey)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if len(cfg.Server.CORS.AllowedOrigins) != 2 ||
		cfg.Server.CORS.AllowedOrigins[0] != want[0] ||
		cfg.Server.CORS.AllowedOrigins[1] != want[1] {
		t.Errorf("cors origins = %v, want %v", cfg.Server.CORS.AllowedOrigins, want)
	}
}

func TestScraperPollIntervalFloor(t *testing.T) {
	s := ScraperConfig{PollIntervalSeconds: 1}
	if got := s.PollInterval(); got != 5*time.Second {
		t.Errorf("interval = %v, want floor of 5s", got)
	}
	s.PollIntervalSeconds = 30
	if got := s.PollInterval(); got != 30*time.Second {
		t.Errorf("interval = %v, want 30s", got)
	}
}

func TestScraperDeadlineCap(t *testing.T) {
	s := ScraperConfig{DeadlineSeconds: 900}
	if got := s.Deadline(); got != 5*time.Minute {
		t.Errorf("deadline = %v, want cap of 5m", got)
	}
	s.DeadlineSeconds = 60
	if got := s.Deadline(); got != time.Minute {
		t.Errorf("deadline = %v, want 1m", got)
	}
}

func TestLLMDeadlineDefault(t *testing.T) {
	l := LLMConfig{}
	if got := l.Deadline(); got != 3*time.Minute {
		t.Errorf("deadline = %v, want 3m default", got)
	}
	l.DeadlineSeconds = 30
	if got := l.Deadline(); got != 30*time.Second {
		t.Errorf("deadline = %v, want 30s", got)
	}
}
