package engines

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"searchhub/internal/domain/search"
	"searchhub/internal/infrastructure/metrics"
)

// circuitState represents the state of a circuit breaker
type circuitState int

const (
	stateClosed circuitState = iota
	stateOpen
	stateHalfOpen
)

func (s circuitState) String() string {
	switch s {
	case stateClosed:
		return "closed"
	case stateOpen:
		return "open"
	case stateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

func (s circuitState) gaugeValue() float64 {
	switch s {
	case stateOpen:
		return 1
	case stateHalfOpen:
		return 0.5
	default:
		return 0
	}
}

// circuitBreakerConfig defines circuit breaker behavior
type circuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int           // failures before opening
	SuccessThreshold int           // successes to close from half-open
	Timeout          time.Duration // how long to stay open before trying half-open
}

func defaultCircuitBreakerConfig() circuitBreakerConfig {
	return circuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Timeout:          30 * time.Second,
	}
}

// circuitBreaker protects one provider from repeated failing calls. Each
// adapter owns its own breaker.
type circuitBreaker struct {
	cfg    circuitBreakerConfig
	engine search.EngineType
	mu     sync.Mutex

	state           circuitState
	failures        int
	successes       int
	lastFailureTime time.Time
}

func newCircuitBreaker(engine search.EngineType, cfg circuitBreakerConfig) *circuitBreaker {
	return &circuitBreaker{
		cfg:    cfg,
		engine: engine,
		state:  stateClosed,
	}
}

// allowRequest determines if a call should be attempted
func (cb *circuitBreaker) allowRequest() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if !cb.cfg.Enabled {
		return true
	}

	switch cb.state {
	case stateClosed:
		return true
	case stateOpen:
		if time.Since(cb.lastFailureTime) > cb.cfg.Timeout {
			log.Info().Str("engine", string(cb.engine)).Msg("circuit breaker transitioning to half-open")
			cb.setState(stateHalfOpen)
			return true
		}
		return false
	case stateHalfOpen:
		return true
	default:
		return false
	}
}

// recordResult updates circuit breaker state based on the call outcome
func (cb *circuitBreaker) recordResult(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if !cb.cfg.Enabled {
		return
	}

	if err != nil {
		cb.failures++
		cb.successes = 0
		cb.lastFailureTime = time.Now()

		if cb.state == stateHalfOpen {
			log.Warn().
				Str("engine", string(cb.engine)).
				Msg("circuit breaker opening from half-open due to failure")
			cb.setState(stateOpen)
		} else if cb.state == stateClosed && cb.failures >= cb.cfg.FailureThreshold {
			log.Warn().
				Str("engine", string(cb.engine)).
				Int("failures", cb.failures).
				Msg("circuit breaker opening due to failure threshold")
			cb.setState(stateOpen)
		}
		return
	}

	cb.successes++
	if cb.state == stateHalfOpen && cb.successes >= cb.cfg.SuccessThreshold {
		log.Info().
			Str("engine", string(cb.engine)).
			Int("successes", cb.successes).
			Msg("circuit breaker closing from half-open")
		cb.setState(stateClosed)
		cb.failures = 0
		cb.successes = 0
	} else if cb.state == stateClosed {
		cb.failures = 0
	}
}

// setState must be called with cb.mu held.
func (cb *circuitBreaker) setState(state circuitState) {
	cb.state = state
	metrics.SetCircuitBreakerState(string(cb.engine), state.gaugeValue())
}
