package search

import "time"

// EngineType identifies a search provider.
type EngineType string

const (
	// EngineBrave routes queries to the Brave Search API.
	EngineBrave EngineType = "brave"
	// EngineDuckDuckGo routes queries to the DuckDuckGo instant answer API.
	EngineDuckDuckGo EngineType = "duckduckgo"
	// EngineGoogleCSE routes queries to a Google Programmable Search Engine.
	EngineGoogleCSE EngineType = "google_cse"
	// EngineMulti tags responses assembled by the orchestrator.
	EngineMulti EngineType = "multi_engine"
)

// Aggregation selects how the orchestrator combines per-engine result lists.
type Aggregation string

const (
	AggregationMerge      Aggregation = "merge"
	AggregationBest       Aggregation = "best"
	AggregationRoundRobin Aggregation = "round_robin"
)

// EngineConfig is the per-adapter configuration. It is validated at adapter
// construction and immutable afterwards.
type EngineConfig struct {
	Engine             EngineType
	APIKey             string
	RateLimitPerMinute int
	CacheTTL           time.Duration
	// Endpoint overrides the provider's default API endpoint (tests, proxies).
	Endpoint string
	// ExtraParams carries provider-specific required fields, e.g. "cse_id".
	ExtraParams map[string]string
}

// OrchestratorConfig controls engine selection, dispatch and aggregation.
type OrchestratorConfig struct {
	// Engines is the ordered list of engine names to initialize.
	Engines              []EngineType
	EngineConfigs        map[EngineType]EngineConfig
	ParallelEnabled      bool
	FallbackEnabled      bool
	ResultAggregation    Aggregation
	DeduplicationEnabled bool
	MaxWorkers           int
	TimeoutSeconds       int
}

// Query is one logical search request.
type Query struct {
	Q          string
	MaxResults int
	Offset     int
	// Engines optionally restricts the orchestrator to a subset of the
	// configured engines. Ignored by individual adapters.
	Engines []EngineType
	// Extra carries provider-specific query parameters.
	Extra map[string]string
}

// Result is one normalized hit. URL is always non-empty; items without a URL
// are dropped during normalization.
type Result struct {
	Title         string         `json:"title"`
	URL           string         `json:"url"`
	Snippet       string         `json:"snippet"`
	Engine        EngineType     `json:"engine"`
	Score         float64        `json:"score"`
	PublishedDate string         `json:"published_date,omitempty"`
	Domain        string         `json:"domain,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// Response is one engine's (or the orchestrator's) answer to a Query.
type Response struct {
	Results      []Result       `json:"results"`
	Engine       EngineType     `json:"engine"`
	Query        string         `json:"query"`
	TotalResults int            `json:"total_results"`
	Page         int            `json:"page"`
	TookMS       int64          `json:"took_ms"`
	FromCache    bool           `json:"from_cache"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Stats reports process-lifetime counters for one adapter.
type Stats struct {
	Requests     int64 `json:"requests"`
	CacheEntries int   `json:"cache_entries"`
}
