package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"searchhub/internal/domain/search"
)

// Config holds all configuration for the SearchHub service
type Config struct {
	HTTPPort  string `env:"SEARCHHUB_HTTP_PORT" envDefault:"8095"`
	LogLevel  string `env:"SEARCHHUB_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"SEARCHHUB_LOG_FORMAT" envDefault:"json"` // json or console

	// Orchestration
	Engines              []string `env:"SEARCH_ENGINES" envSeparator:"," envDefault:"duckduckgo"`
	ParallelEnabled      bool     `env:"SEARCH_PARALLEL_ENABLED" envDefault:"true"`
	FallbackEnabled      bool     `env:"SEARCH_FALLBACK_ENABLED" envDefault:"true"`
	ResultAggregation    string   `env:"SEARCH_RESULT_AGGREGATION" envDefault:"merge"`
	DeduplicationEnabled bool     `env:"SEARCH_DEDUPLICATION_ENABLED" envDefault:"true"`
	MaxWorkers           int      `env:"SEARCH_MAX_WORKERS" envDefault:"4"`
	TimeoutSeconds       int      `env:"SEARCH_TIMEOUT_SECONDS" envDefault:"30"`
	CacheTTLSeconds      int      `env:"SEARCH_CACHE_TTL_SECONDS" envDefault:"300"`

	// Brave
	BraveAPIKey    string `env:"BRAVE_API_KEY"`
	BraveRateLimit int    `env:"BRAVE_RATE_LIMIT_PER_MINUTE" envDefault:"60"`

	// DuckDuckGo
	DuckDuckGoRateLimit int `env:"DUCKDUCKGO_RATE_LIMIT_PER_MINUTE" envDefault:"30"`

	// Google CSE
	GoogleCSEAPIKey    string `env:"GOOGLE_CSE_API_KEY"`
	GoogleCSEID        string `env:"GOOGLE_CSE_ID"`
	GoogleCSERateLimit int    `env:"GOOGLE_CSE_RATE_LIMIT_PER_MINUTE" envDefault:"10"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	switch search.Aggregation(strings.ToLower(cfg.ResultAggregation)) {
	case search.AggregationMerge, search.AggregationBest, search.AggregationRoundRobin:
	default:
		return nil, fmt.Errorf("SEARCH_RESULT_AGGREGATION must be one of merge, best, round_robin (got %q)", cfg.ResultAggregation)
	}
	if len(cfg.Engines) == 0 {
		return nil, fmt.Errorf("SEARCH_ENGINES must name at least one engine")
	}

	return cfg, nil
}

// OrchestratorConfig maps the environment surface onto the domain config.
// Credentials are assumed already resolved by the deployment environment;
// this layer never fetches or stores them.
func (c *Config) OrchestratorConfig() search.OrchestratorConfig {
	cacheTTL := time.Duration(c.CacheTTLSeconds) * time.Second

	engines := make([]search.EngineType, 0, len(c.Engines))
	for _, name := range c.Engines {
		engines = append(engines, search.EngineType(strings.ToLower(strings.TrimSpace(name))))
	}

	return search.OrchestratorConfig{
		Engines: engines,
		EngineConfigs: map[search.EngineType]search.EngineConfig{
			search.EngineBrave: {
				APIKey:             c.BraveAPIKey,
				RateLimitPerMinute: c.BraveRateLimit,
				CacheTTL:           cacheTTL,
			},
			search.EngineDuckDuckGo: {
				RateLimitPerMinute: c.DuckDuckGoRateLimit,
				CacheTTL:           cacheTTL,
			},
			search.EngineGoogleCSE: {
				APIKey:             c.GoogleCSEAPIKey,
				RateLimitPerMinute: c.GoogleCSERateLimit,
				CacheTTL:           cacheTTL,
				ExtraParams:        map[string]string{"cse_id": c.GoogleCSEID},
			},
		},
		ParallelEnabled:      c.ParallelEnabled,
		FallbackEnabled:      c.FallbackEnabled,
		ResultAggregation:    search.Aggregation(strings.ToLower(c.ResultAggregation)),
		DeduplicationEnabled: c.DeduplicationEnabled,
		MaxWorkers:           c.MaxWorkers,
		TimeoutSeconds:       c.TimeoutSeconds,
	}
}
