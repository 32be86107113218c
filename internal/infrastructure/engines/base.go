package engines

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"searchhub/internal/domain/search"
	"searchhub/internal/infrastructure/metrics"
)

const (
	userAgent      = "SearchHub/1.0"
	requestTimeout = 10 * time.Second
)

// baseAdapter carries the per-provider state every concrete adapter needs:
// a pooled HTTP client, a TTL response cache, a token-bucket limiter, a
// circuit breaker and a request counter.
type baseAdapter struct {
	engine   search.EngineType
	cfg      search.EngineConfig
	client   *resty.Client
	cache    *responseCache
	limiter  *rate.Limiter
	breaker  *circuitBreaker
	retry    retryConfig
	requests atomic.Int64
}

func newBaseAdapter(engine search.EngineType, cfg search.EngineConfig, defaultRateLimit int) *baseAdapter {
	perMinute := cfg.RateLimitPerMinute
	if perMinute <= 0 {
		perMinute = defaultRateLimit
	}

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		MaxConnsPerHost:     50,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	client := resty.New().
		SetHeader("User-Agent", userAgent).
		SetTimeout(requestTimeout).
		SetRetryCount(0).
		SetTransport(transport)

	return &baseAdapter{
		engine:  engine,
		cfg:     cfg,
		client:  client,
		cache:   newResponseCache(cfg.CacheTTL),
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
		breaker: newCircuitBreaker(engine, defaultCircuitBreakerConfig()),
		retry:   defaultRetryConfig(),
	}
}

// run wraps one logical search call with the cache, limiter and breaker.
// A cache hit returns immediately without touching the limiter or the
// network. fetch may issue several HTTP requests (pagination) but counts as
// a single request in Stats.
func (b *baseAdapter) run(ctx context.Context, query search.Query, fetch func(ctx context.Context) (*search.Response, error)) (*search.Response, error) {
	start := time.Now()

	key := cacheKey(query)
	if resp, ok := b.cache.Get(key); ok {
		metrics.RecordCacheHit(string(b.engine))
		log.Debug().
			Str("engine", string(b.engine)).
			Str("query", query.Q).
			Msg("serving search response from cache")
		resp.FromCache = true
		// took_ms reports this call's latency, not the original fetch's.
		resp.TookMS = time.Since(start).Milliseconds()
		return resp, nil
	}

	// Breaker before limiter: a breaker-open rejection must not burn a
	// rate-limit token.
	if !b.breaker.allowRequest() {
		return nil, search.NewEngineError(b.engine, "circuit breaker is open", nil)
	}

	if !b.limiter.Allow() {
		log.Warn().
			Str("engine", string(b.engine)).
			Str("query", query.Q).
			Msg("local rate limit exhausted, rejecting call")
		return nil, search.NewRateLimitError(b.engine, "local rate limit exhausted")
	}

	b.requests.Add(1)

	resp, err := fetch(ctx)
	b.breaker.recordResult(err)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordEngineRequest(string(b.engine), status)
	metrics.RecordEngineLatency(string(b.engine), time.Since(start).Seconds())

	if err != nil {
		return nil, err
	}

	resp.TookMS = time.Since(start).Milliseconds()
	resp.FromCache = false
	b.cache.Set(key, resp)
	return resp, nil
}

// stats implements the Stats half of the Adapter contract.
func (b *baseAdapter) stats() search.Stats {
	return search.Stats{
		Requests:     b.requests.Load(),
		CacheEntries: b.cache.Len(),
	}
}

// statusError classifies a provider HTTP error response. 429 is always a
// quota error; Google additionally reports quota exhaustion as 403 with a
// quota message in the body.
func (b *baseAdapter) statusError(statusCode int, body string) *search.EngineError {
	httpErr := fmt.Errorf("status %d: %s", statusCode, body)
	if statusCode == http.StatusTooManyRequests {
		return search.NewQuotaError(b.engine, "provider quota exhausted", httpErr)
	}
	if statusCode == http.StatusForbidden && strings.Contains(strings.ToLower(body), "quota") {
		return search.NewQuotaError(b.engine, "provider quota exhausted", httpErr)
	}
	return search.NewEngineError(b.engine, "provider request failed", httpErr)
}

// newResult normalizes one raw provider item. Returns false when the item
// has no URL and must be dropped. rankIndex is the zero-based position
// within the provider's own result list for this call; score decays by 0.01
// per position.
func newResult(engine search.EngineType, rankIndex int, title, rawURL, snippet string) (search.Result, bool) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return search.Result{}, false
	}

	result := search.Result{
		Title:   strings.TrimSpace(title),
		URL:     rawURL,
		Snippet: strings.TrimSpace(snippet),
		Engine:  engine,
		Score:   1.0 - float64(rankIndex)*0.01,
	}
	if parsed, err := url.Parse(rawURL); err == nil {
		result.Domain = parsed.Hostname()
	}
	return result, true
}
