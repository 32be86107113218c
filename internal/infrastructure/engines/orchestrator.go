package engines

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"searchhub/internal/domain/search"
)

const (
	defaultMaxWorkers     = 4
	defaultTimeoutSeconds = 30
	defaultMaxResults     = 10
)

// Orchestrator executes one logical query against a set of adapters and
// combines the successful responses under the configured aggregation,
// deduplication and truncation policies. The adapter map is built once at
// construction and read-only afterwards.
type Orchestrator struct {
	cfg      search.OrchestratorConfig
	adapters map[search.EngineType]Adapter
	// order preserves the configured engine order for sequential dispatch.
	order []search.EngineType
}

var _ search.Provider = (*Orchestrator)(nil)

// NewOrchestrator constructs the adapters named in cfg.Engines. Engines that
// fail to construct (missing credentials, unknown type) are logged and
// excluded from every future call; construction itself still succeeds so the
// remaining engines stay usable.
func NewOrchestrator(cfg search.OrchestratorConfig) *Orchestrator {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = defaultMaxWorkers
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = defaultTimeoutSeconds
	}
	if cfg.ResultAggregation == "" {
		cfg.ResultAggregation = search.AggregationMerge
	}

	o := &Orchestrator{
		cfg:      cfg,
		adapters: make(map[search.EngineType]Adapter, len(cfg.Engines)),
	}

	for _, engine := range cfg.Engines {
		engineCfg := cfg.EngineConfigs[engine]
		engineCfg.Engine = engine

		adapter, err := NewAdapter(engineCfg)
		if err != nil {
			log.Warn().
				Err(err).
				Str("engine", string(engine)).
				Msg("engine failed to construct, excluding from orchestration")
			continue
		}
		o.adapters[engine] = adapter
		o.order = append(o.order, engine)
		log.Info().Str("engine", string(engine)).Msg("engine initialized")
	}

	if len(o.adapters) == 0 {
		log.Error().Msg("no engines initialized, every search will fail")
	}

	return o
}

// Search resolves the target engine set, dispatches, aggregates and
// deduplicates. Partial failure is never surfaced: the call fails only when
// the selected set is empty or every engine in it failed.
func (o *Orchestrator) Search(ctx context.Context, query search.Query) (*search.Response, error) {
	start := time.Now()

	selected := o.resolveEngines(query.Engines)
	if len(selected) == 0 {
		return nil, search.NewEngineError(search.EngineMulti, "no valid engines available", nil)
	}

	if query.MaxResults <= 0 {
		query.MaxResults = defaultMaxResults
	}

	var (
		responses []*search.Response
		err       error
	)
	if o.cfg.ParallelEnabled && len(selected) > 1 {
		responses = o.dispatchParallel(ctx, selected, query)
	} else {
		responses, err = o.dispatchSequential(ctx, selected, query)
		if err != nil {
			return nil, err
		}
	}

	if len(responses) == 0 {
		return nil, search.NewEngineError(search.EngineMulti, "all search engines failed", nil)
	}

	results, enginesUsed := o.aggregate(responses)
	if o.cfg.DeduplicationEnabled {
		results = deduplicate(results)
	}
	if len(results) > query.MaxResults {
		results = results[:query.MaxResults]
	}

	return &search.Response{
		Results:      results,
		Engine:       search.EngineMulti,
		Query:        query.Q,
		TotalResults: len(results),
		Page:         query.Offset,
		TookMS:       time.Since(start).Milliseconds(),
		Metadata: map[string]any{
			"engines_used":       enginesUsed,
			"engine_count":       len(enginesUsed),
			"aggregation_method": string(o.cfg.ResultAggregation),
			"deduplication":      o.cfg.DeduplicationEnabled,
		},
	}, nil
}

// resolveEngines intersects the caller override (or the configured list)
// with the engines that constructed successfully, preserving request order.
func (o *Orchestrator) resolveEngines(override []search.EngineType) []search.EngineType {
	requested := override
	if len(requested) == 0 {
		requested = o.order
	}

	selected := make([]search.EngineType, 0, len(requested))
	for _, engine := range requested {
		if _, ok := o.adapters[engine]; ok {
			selected = append(selected, engine)
		} else if len(override) > 0 {
			log.Warn().Str("engine", string(engine)).Msg("requested engine is not available")
		}
	}
	return selected
}

// dispatchParallel fans the query out on a bounded worker pool. Adapter
// failures are logged and excluded; responses are collected in completion
// order. The call returns when every task completes or the collection
// deadline elapses, whichever comes first; tasks still outstanding at the
// deadline are abandoned and their eventual results discarded.
func (o *Orchestrator) dispatchParallel(ctx context.Context, selected []search.EngineType, query search.Query) []*search.Response {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(o.cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	var (
		mu        sync.Mutex
		responses []*search.Response
	)

	// Dispatch and Wait run off the calling goroutine so an adapter that
	// ignores cancellation can never hold Search past the deadline.
	done := make(chan struct{})
	go func() {
		defer close(done)

		g := &errgroup.Group{}
		g.SetLimit(o.cfg.MaxWorkers)

		for _, engine := range selected {
			adapter := o.adapters[engine]
			g.Go(func() error {
				resp, err := adapter.Search(ctx, query)
				if err != nil {
					log.Warn().
						Err(err).
						Str("engine", string(adapter.Type())).
						Str("query", query.Q).
						Msg("engine search failed")
					return nil
				}

				mu.Lock()
				defer mu.Unlock()
				if ctx.Err() != nil {
					// Arrived after the collection deadline; discard.
					return nil
				}
				responses = append(responses, resp)
				return nil
			})
		}

		// Workers never return errors; Wait only synchronizes collection.
		_ = g.Wait()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		log.Warn().
			Int("timeout_seconds", o.cfg.TimeoutSeconds).
			Str("query", query.Q).
			Msg("collection deadline elapsed, abandoning outstanding engines")
	}

	mu.Lock()
	defer mu.Unlock()
	return responses
}

// dispatchSequential calls engines one at a time in configured order. With
// fallback enabled a failure only logs and the next engine is tried; without
// it, the first failure is surfaced and the first success short-circuits.
func (o *Orchestrator) dispatchSequential(ctx context.Context, selected []search.EngineType, query search.Query) ([]*search.Response, error) {
	var responses []*search.Response

	for _, engine := range selected {
		adapter := o.adapters[engine]
		resp, err := adapter.Search(ctx, query)
		if err != nil {
			if !o.cfg.FallbackEnabled {
				return nil, err
			}
			log.Warn().
				Err(err).
				Str("engine", string(engine)).
				Str("query", query.Q).
				Msg("engine search failed, falling back to next engine")
			continue
		}

		responses = append(responses, resp)
		if !o.cfg.FallbackEnabled {
			break
		}
	}

	return responses, nil
}

// aggregate combines the successful responses according to the configured
// strategy. Within one engine's list the provider order is preserved; across
// engines the order is an artifact of collection, not a ranking.
func (o *Orchestrator) aggregate(responses []*search.Response) ([]search.Result, []search.EngineType) {
	enginesUsed := make([]search.EngineType, 0, len(responses))
	for _, resp := range responses {
		enginesUsed = append(enginesUsed, resp.Engine)
	}

	switch o.cfg.ResultAggregation {
	case search.AggregationBest:
		best := responses[0]
		for _, resp := range responses[1:] {
			if len(resp.Results) > len(best.Results) {
				best = resp
			}
		}
		return append([]search.Result(nil), best.Results...), []search.EngineType{best.Engine}

	case search.AggregationRoundRobin:
		var results []search.Result
		for i := 0; ; i++ {
			contributed := false
			for _, resp := range responses {
				if i < len(resp.Results) {
					results = append(results, resp.Results[i])
					contributed = true
				}
			}
			if !contributed {
				break
			}
		}
		return results, enginesUsed

	default: // merge
		var results []search.Result
		for _, resp := range responses {
			results = append(results, resp.Results...)
		}
		return results, enginesUsed
	}
}

// deduplicate drops results whose normalized URL was already seen, keeping
// the first occurrence. URL is the sole dedup key.
func deduplicate(results []search.Result) []search.Result {
	seen := make(map[string]struct{}, len(results))
	deduped := make([]search.Result, 0, len(results))

	for _, result := range results {
		key := strings.ToLower(strings.TrimSpace(result.URL))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, result)
	}
	return deduped
}

// Stats aggregates per-engine request and cache counters.
func (o *Orchestrator) Stats() map[search.EngineType]search.Stats {
	stats := make(map[search.EngineType]search.Stats, len(o.adapters))
	for engine, adapter := range o.adapters {
		stats[engine] = adapter.Stats()
	}
	return stats
}

// TestAllConnections probes every adapter, isolating outcomes per engine.
func (o *Orchestrator) TestAllConnections(ctx context.Context) map[search.EngineType]bool {
	verdicts := make(map[search.EngineType]bool, len(o.adapters))
	for engine, adapter := range o.adapters {
		verdicts[engine] = adapter.TestConnection(ctx)
	}
	return verdicts
}
