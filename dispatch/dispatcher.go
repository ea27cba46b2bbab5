package dispatch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/cloudkit/classifier"
	"github.com/kbukum/cloudkit/errors"
	"github.com/kbukum/cloudkit/logger"
	"github.com/kbukum/cloudkit/observability"
	"github.com/kbukum/cloudkit/parser"
	"github.com/kbukum/cloudkit/resilience"
	"github.com/kbukum/cloudkit/signer"
	"github.com/kbukum/cloudkit/transport"
)

// ContentType is the media type of every request body.
const ContentType = "application/x-www-form-urlencoded"

// Conn is the connection a Dispatcher owns.
type Conn interface {
	Post(ctx context.Context, body []byte, header http.Header) (*transport.Response, error)
	Reset()
}

// Dispatcher runs requests for one client.
type Dispatcher struct {
	mu sync.Mutex

	conn       Conn
	signer     *signer.Signer
	classifier *classifier.Classifier

	log          *logger.Logger
	metrics      *observability.Metrics
	retry        resilience.RetryConfig
	limiter      *resilience.RateLimiter
	userAgent    string
	maxErrorBody int64
}

// New creates a Dispatcher that owns conn.
func New(conn Conn, s *signer.Signer, c *classifier.Classifier, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		conn:         conn,
		signer:       s,
		classifier:   c,
		retry:        resilience.DefaultRetryConfig(),
		maxErrorBody: DefaultMaxErrorBody,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.log == nil {
		d.log = logger.GetGlobalLogger()
	}
	d.log = d.log.WithComponent("dispatch")
	return d
}

// Dispatch signs params, sends them, and returns the parsed result or a
// classified error. After the retry policy is exhausted the last failure is
// returned.
func (d *Dispatcher) Dispatch(ctx context.Context, params signer.Params, opts Options) (parser.Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	body, err := d.signer.Sign(params)
	if err != nil {
		return nil, err
	}

	action := actionOf(params)
	requestID := uuid.NewString()
	log := d.log.WithFields(logger.Fields(
		logger.FieldService, d.classifier.Service(),
		logger.FieldAction, action,
		logger.FieldHost, d.signer.Host(),
		logger.FieldRequestID, requestID,
	))

	oc := observability.NewOperationContext(d.classifier.Service(), action, d.signer.Host(), requestID, d.metrics)
	ctx, span := oc.StartSpanForOperation(ctx, observability.SpanDispatch)

	log.Debug("dispatching request", logger.Fields(logger.FieldAttempt, 1))

	var lastStatus int
	header := d.header()
	expects := opts.expects()
	result, err := resilience.Retry(ctx, d.policy(opts, log), func(attempt int) (parser.Result, error) {
		oc.RecordAttempt(ctx)
		status, res, err := d.attempt(ctx, []byte(body), header, expects, opts.Parser)
		lastStatus = status
		return res, err
	})
	if err != nil && ctx.Err() != nil {
		if _, ok := errors.As(err); !ok {
			err = interrupted("request not sent", err)
		}
	}
	oc.EndOperation(ctx, span, lastStatus, err)

	if err != nil {
		fields := logger.Fields(
			logger.FieldAttempt, oc.Attempts(),
			logger.FieldStatus, lastStatus,
			logger.FieldKind, string(errors.KindOf(err)),
			logger.FieldDuration, oc.Duration().Milliseconds(),
		)
		if e, ok := errors.As(err); ok && e.Code != "" {
			fields[logger.FieldCode] = e.Code
		}
		log.WithError(err).Error("request failed", fields)
		return nil, err
	}

	log.Debug("request completed", logger.Fields(
		logger.FieldAttempt, oc.Attempts(),
		logger.FieldStatus, lastStatus,
		logger.FieldDuration, oc.Duration().Milliseconds(),
	))
	return result, nil
}

// Reload tears the connection down. Credentials and signing state are kept;
// the next Dispatch establishes a new connection.
func (d *Dispatcher) Reload() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.conn.Reset()
	d.log.Debug("connection reset")
}

func (d *Dispatcher) policy(opts Options, log *logger.Logger) resilience.RetryConfig {
	if !opts.Idempotent {
		return resilience.NoRetry()
	}
	cfg := d.retry
	base := cfg.RetryIf
	cfg.RetryIf = func(err error) bool {
		return errors.IsRetryable(err) && (base == nil || base(err))
	}
	cfg.OnRetry = func(attempt int, err error, backoff time.Duration) {
		log.Warn("retrying request", logger.Fields(
			logger.FieldAttempt, attempt,
			logger.FieldBackoff, backoff.Milliseconds(),
			logger.FieldError, err.Error(),
		))
	}
	return cfg
}

func (d *Dispatcher) header() http.Header {
	h := http.Header{}
	h.Set("Content-Type", ContentType)
	h.Set("Host", d.signer.Host())
	if d.userAgent != "" {
		h.Set("User-Agent", d.userAgent)
	}
	return h
}

// attempt performs one HTTP exchange and returns the status seen.
func (d *Dispatcher) attempt(ctx context.Context, body []byte, header http.Header, expects []int, h parser.Handler) (int, parser.Result, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return 0, nil, interrupted("waiting for rate limit", err)
	}

	resp, err := d.conn.Post(ctx, body, header)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close() //nolint:errcheck // Error on close is safe to ignore for read operations

	if !slices.Contains(expects, resp.StatusCode) {
		raw, err := io.ReadAll(io.LimitReader(resp.Body, d.maxErrorBody))
		if err != nil {
			return resp.StatusCode, nil, errors.Transport(fmt.Errorf("reading error body: %w", err))
		}
		return resp.StatusCode, nil, d.classifier.Classify(resp.StatusCode, raw)
	}

	if h == nil {
		if _, err := io.Copy(io.Discard, resp.Body); err != nil {
			return resp.StatusCode, nil, errors.Transport(fmt.Errorf("draining body: %w", err))
		}
		return resp.StatusCode, parser.Result{}, nil
	}

	tracked := &readTracker{r: resp.Body}
	result, err := parser.Decode(tracked, h)
	if tracked.err != nil {
		return resp.StatusCode, nil, errors.Transport(fmt.Errorf("reading body: %w", tracked.err))
	}
	if err != nil {
		return resp.StatusCode, nil, err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, result, nil
}

// interrupted reports a done caller context as a non-retryable TRANSPORT error.
func interrupted(stage string, err error) *errors.Error {
	e := errors.Transport(fmt.Errorf("%s: %w", stage, err))
	e.Retryable = false
	return e
}

// readTracker remembers the first non-EOF read failure so a broken
// connection is not reported as malformed markup.
type readTracker struct {
	r   io.Reader
	err error
}

func (t *readTracker) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF && t.err == nil {
		t.err = err
	}
	return n, err
}

func actionOf(params signer.Params) string {
	if v, ok := params[signer.ParamAction].(string); ok {
		return v
	}
	return ""
}
