package dispatch

import (
	"net/http"

	"github.com/kbukum/cloudkit/logger"
	"github.com/kbukum/cloudkit/observability"
	"github.com/kbukum/cloudkit/parser"
	"github.com/kbukum/cloudkit/resilience"
)

// DefaultMaxErrorBody caps how much of a failure body is read for classification.
const DefaultMaxErrorBody = 64 << 10

// Options controls one request. It is kept apart from the protocol
// parameters so control values are never signed or transmitted.
type Options struct {
	// Parser consumes a successful body. Nil drains the body and returns an
	// empty result.
	Parser parser.Handler
	// Expects lists the success statuses. Defaults to 200 only.
	Expects []int
	// Idempotent allows retrying transient failures.
	Idempotent bool
}

func (o Options) expects() []int {
	if len(o.Expects) == 0 {
		return []int{http.StatusOK}
	}
	return o.Expects
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger. Defaults to the global logger.
func WithLogger(l *logger.Logger) Option {
	return func(d *Dispatcher) { d.log = l }
}

// WithMetrics records request metrics on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithRetry sets the policy applied to idempotent requests.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(d *Dispatcher) { d.retry = cfg }
}

// WithRateLimiter makes every attempt wait for a token from rl.
func WithRateLimiter(rl *resilience.RateLimiter) Option {
	return func(d *Dispatcher) { d.limiter = rl }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(d *Dispatcher) { d.userAgent = ua }
}

// WithMaxErrorBody caps how many failure body bytes are read.
func WithMaxErrorBody(n int64) Option {
	return func(d *Dispatcher) { d.maxErrorBody = n }
}
