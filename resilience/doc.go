// Package resilience provides the retry policy and request rate limiting
// used by the dispatcher.
//
//   - Retry: bounded attempts with exponential, jittered backoff
//   - RateLimiter: token bucket limiting outgoing requests
//
// Example:
//
//	cfg := resilience.DefaultRetryConfig()
//	cfg.RetryIf = errors.IsRetryable
//	result, err := resilience.Retry(ctx, cfg, func(attempt int) (parser.Result, error) {
//	    if err := limiter.Wait(ctx); err != nil {
//	        return nil, err
//	    }
//	    return send(ctx)
//	})
package resilience
