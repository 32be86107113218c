package engines

import (
	"context"

	"searchhub/internal/domain/search"
)

// Adapter encapsulates one provider's network protocol behind a uniform
// contract. Implementations own their cache and rate-limiter state, which
// must be safe for concurrent use by the orchestrator's worker pool.
type Adapter interface {
	// Type identifies the provider.
	Type() search.EngineType
	// Search executes one logical query against the provider. Results that
	// lack a URL are dropped during normalization, not surfaced as errors.
	Search(ctx context.Context, query search.Query) (*search.Response, error)
	// TestConnection performs a minimal search and reports reachability.
	// A provider-reported quota error counts as reachable: it proves the
	// endpoint answered.
	TestConnection(ctx context.Context) bool
	// Stats reports process-lifetime request and cache counters.
	Stats() search.Stats
}

// NewAdapter constructs the adapter for cfg.Engine. Misconfiguration
// (missing credential, missing required extra param, unknown engine type)
// fails here, never on first search.
func NewAdapter(cfg search.EngineConfig) (Adapter, error) {
	switch cfg.Engine {
	case search.EngineBrave:
		return NewBraveAdapter(cfg)
	case search.EngineDuckDuckGo:
		return NewDuckDuckGoAdapter(cfg)
	case search.EngineGoogleCSE:
		return NewGoogleCSEAdapter(cfg)
	default:
		return nil, search.NewConfigError(cfg.Engine, "unknown engine type")
	}
}

// probeConnection issues a 1-result search and maps the outcome to a
// reachability verdict. Quota and local rate-limit failures do not count as
// connection failures.
func probeConnection(ctx context.Context, a Adapter) bool {
	_, err := a.Search(ctx, search.Query{Q: "connectivity check", MaxResults: 1})
	if err == nil {
		return true
	}
	if search.IsErrorType(err, search.ErrorTypeQuota) || search.IsErrorType(err, search.ErrorTypeRateLimit) {
		return true
	}
	return false
}
