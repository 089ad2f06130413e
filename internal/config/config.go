package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the process-wide configuration. Credentials are read once at
// startup; rotation requires a restart.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Scraper ScraperConfig `mapstructure:"scraper"`
	LLM     LLMConfig     `mapstructure:"llm"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type ScraperConfig struct {
	ApifyToken          string   `mapstructure:"apify_token"`
	PollIntervalSeconds int      `mapstructure:"poll_interval_seconds"`
	DeadlineSeconds     int      `mapstructure:"deadline_seconds"`
	Priority            []string `mapstructure:"priority"`
}

// PollInterval never drops below the 5 s contract with the remote service.
func (s ScraperConfig) PollInterval() time.Duration {
	if s.PollIntervalSeconds < 5 {
		return 5 * time.Second
	}
	return time.Duration(s.PollIntervalSeconds) * time.Second
}

// Deadline bounds one collection run, capped at 5 minutes.
func (s ScraperConfig) Deadline() time.Duration {
	if s.DeadlineSeconds <= 0 || s.DeadlineSeconds > 300 {
		return 5 * time.Minute
	}
	return time.Duration(s.DeadlineSeconds) * time.Second
}

type LLMConfig struct {
	GoogleAPIKey    string `mapstructure:"google_api_key"`
	AnthropicAPIKey string `mapstructure:"anthropic_api_key"`
	OpenAIAPIKey    string `mapstructure:"openai_api_key"`
	GeminiModel     string `mapstructure:"gemini_model"`
	ClaudeModel     string `mapstructure:"claude_model"`
	OpenAIModel     string `mapstructure:"openai_model"`
	DeadlineSeconds int    `mapstructure:"deadline_seconds"`
}

// Deadline bounds one extraction run, default 3 minutes.
func (l LLMConfig) Deadline() time.Duration {
	if l.DeadlineSeconds <= 0 {
		return 3 * time.Minute
	}
	return time.Duration(l.DeadlineSeconds) * time.Second
}

// Load reads configuration from an optional config file plus environment
// variables. A missing config file is not an error; missing credentials
// degrade the pipeline instead of failing startup.
func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("server.port", 5000)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", false)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("scraper.poll_interval_seconds", 10)
	v.SetDefault("scraper.deadline_seconds", 300)
	v.SetDefault("scraper.priority", []string{"indeed", "googlejobs"})
	v.SetDefault("llm.gemini_model", "gemini-2.0-flash")
	v.SetDefault("llm.claude_model", "claude-3-5-sonnet-latest")
	v.SetDefault("llm.openai_model", "gpt-4o-mini")
	v.SetDefault("llm.deadline_seconds", 180)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.mode", "GIN_MODE")
	v.BindEnv("scraper.apify_token", "APIFY_API_TOKEN")
	v.BindEnv("llm.google_api_key", "GOOGLE_API_KEY")
	v.BindEnv("llm.anthropic_api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("llm.openai_api_key", "OPENAI_API_KEY")
	v.BindEnv("server.cors.allowed_origins", "CORS_ALLOWED_ORIGINS")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// CORS_ALLOWED_ORIGINS arrives as a comma list when set via env.
	if len(cfg.Server.CORS.AllowedOrigins) == 1 && strings.Contains(cfg.Server.CORS.AllowedOrigins[0], ",") {
		parts := strings.Split(cfg.Server.CORS.AllowedOrigins[0], ",")
		origins := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				origins = append(origins, p)
			}
		}
		cfg.Server.CORS.AllowedOrigins = origins
	}

	return &cfg, nil
}
