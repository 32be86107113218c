package search

import "context"

// Provider defines the orchestration operations required by the domain layer.
type Provider interface {
	Search(ctx context.Context, query Query) (*Response, error)
	Stats() map[EngineType]Stats
	TestAllConnections(ctx context.Context) map[EngineType]bool
}

// Service exposes multi-engine search to the transport layer while remaining
// transport-agnostic.
type Service struct {
	provider Provider
}

// NewService creates a new search service.
func NewService(provider Provider) *Service {
	return &Service{provider: provider}
}

// Search executes one logical query across the configured engines.
func (s *Service) Search(ctx context.Context, query Query) (*Response, error) {
	return s.provider.Search(ctx, query)
}

// Stats returns per-engine request and cache counters.
func (s *Service) Stats() map[EngineType]Stats {
	return s.provider.Stats()
}

// TestAllConnections reports per-engine reachability.
func (s *Service) TestAllConnections(ctx context.Context) map[EngineType]bool {
	return s.provider.TestAllConnections(ctx)
}
