package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"searchhub/internal/domain/search"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "8095", cfg.HTTPPort)
	require.Equal(t, []string{"duckduckgo"}, cfg.Engines)
	require.True(t, cfg.ParallelEnabled)
	require.Equal(t, "merge", cfg.ResultAggregation)
}

func TestLoadConfigRejectsUnknownAggregation(t *testing.T) {
	t.Setenv("SEARCH_RESULT_AGGREGATION", "bogus")
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestOrchestratorConfigMapping(t *testing.T) {
	t.Setenv("SEARCH_ENGINES", "brave, google_cse")
	t.Setenv("BRAVE_API_KEY", "brave-key")
	t.Setenv("GOOGLE_CSE_API_KEY", "google-key")
	t.Setenv("GOOGLE_CSE_ID", "cse-123")
	t.Setenv("SEARCH_RESULT_AGGREGATION", "round_robin")
	t.Setenv("SEARCH_MAX_WORKERS", "8")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	oc := cfg.OrchestratorConfig()
	require.Equal(t, []search.EngineType{search.EngineBrave, search.EngineGoogleCSE}, oc.Engines)
	require.Equal(t, search.AggregationRoundRobin, oc.ResultAggregation)
	require.Equal(t, 8, oc.MaxWorkers)
	require.Equal(t, "brave-key", oc.EngineConfigs[search.EngineBrave].APIKey)
	require.Equal(t, "cse-123", oc.EngineConfigs[search.EngineGoogleCSE].ExtraParams["cse_id"])
}
