package service

import (
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/credentials"

	"github.com/kbukum/cloudkit/classifier"
	"github.com/kbukum/cloudkit/dispatch"
	"github.com/kbukum/cloudkit/errors"
	"github.com/kbukum/cloudkit/logger"
	"github.com/kbukum/cloudkit/observability"
	"github.com/kbukum/cloudkit/parser"
	"github.com/kbukum/cloudkit/resilience"
	"github.com/kbukum/cloudkit/signer"
	"github.com/kbukum/cloudkit/transport"
	"github.com/kbukum/cloudkit/version"
)

// Option configures client construction.
type Option func(*options)

type options struct {
	log     *logger.Logger
	metrics *observability.Metrics
	clock   func() time.Time
}

// WithLogger sets the client logger. Defaults to the global logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMetrics records dispatch metrics on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithClock replaces the clock used for request timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

// Client issues requests against one endpoint of one service.
type Client struct {
	def        Definition
	region     string
	conn       *transport.Connection
	dispatcher *dispatch.Dispatcher
}

// New validates cfg and builds a client for def. Nothing is sent until the
// first request.
func New(ctx context.Context, def Definition, cfg Config, opts ...Option) (*Client, error) {
	if err := def.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = clientLogger(def, cfg)
	}

	region, host, err := resolveEndpoint(def, cfg)
	if err != nil {
		return nil, err
	}

	creds, err := resolveCredentials(ctx, cfg)
	if err != nil {
		return nil, err
	}

	path := cfg.Path
	if path == "" {
		path = def.Path
	}

	userAgent := version.UserAgent()
	conn, err := transport.New(transport.Config{
		Scheme:     cfg.Scheme,
		Host:       host,
		Port:       cfg.Port,
		Path:       path,
		Persistent: cfg.Persistent,
		Timeout:    cfg.Timeout,
		UserAgent:  userAgent,
		TLS:        cfg.TLS,
	})
	if err != nil {
		return nil, err
	}

	var signerOpts []signer.Option
	if o.clock != nil {
		signerOpts = append(signerOpts, signer.WithClock(o.clock))
	}
	s, err := signer.New(signer.Context{
		Host:        host,
		Scheme:      conn.Config().Scheme,
		Path:        conn.Config().Path,
		Port:        cfg.Port,
		Version:     def.APIVersion,
		Credentials: creds,
	}, signerOpts...)
	if err != nil {
		return nil, err
	}

	retry := resilience.DefaultRetryConfig()
	if cfg.Retry != nil {
		retry = *cfg.Retry
	}

	var limiter *resilience.RateLimiter
	if cfg.RateLimit != nil {
		limiter = resilience.NewRateLimiter(*cfg.RateLimit)
	}

	log := o.log.WithFields(logger.Fields(logger.FieldService, def.Name))
	d := dispatch.New(conn, s, classifier.New(def.Name, def.Errors),
		dispatch.WithLogger(log),
		dispatch.WithMetrics(o.metrics),
		dispatch.WithRetry(retry),
		dispatch.WithRateLimiter(limiter),
		dispatch.WithUserAgent(userAgent),
	)

	log.Debug("client created", logger.Fields(
		"region", region,
		logger.FieldHost, host,
		"url", conn.URL(),
		"persistent", cfg.Persistent,
	))

	return &Client{
		def:        def,
		region:     region,
		conn:       conn,
		dispatcher: d,
	}, nil
}

// resolveEndpoint picks the host: an explicit host wins over the region table.
func resolveEndpoint(def Definition, cfg Config) (string, string, error) {
	if cfg.Host != "" {
		region := cfg.Region
		if region == "" {
			region = def.DefaultRegion
		}
		return region, strings.ToLower(cfg.Host), nil
	}
	return def.Endpoint(cfg.Region)
}

// resolveCredentials retrieves the key pair once. Static keys go through the
// same provider interface as any other source.
func resolveCredentials(ctx context.Context, cfg Config) (signer.Credentials, error) {
	provider := cfg.Credentials
	if provider == nil {
		provider = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}

	v, err := provider.Retrieve(ctx)
	if err != nil {
		return signer.Credentials{}, errors.Configuration("failed to retrieve credentials: %v", err).WithCause(err)
	}

	creds := signer.Credentials{AccessKeyID: v.AccessKeyID, SecretAccessKey: v.SecretAccessKey}
	if err := creds.Validate(); err != nil {
		return signer.Credentials{}, err
	}
	return creds, nil
}

// Request signs and sends params. Control values in opts are never sent.
func (c *Client) Request(ctx context.Context, params signer.Params, opts dispatch.Options) (parser.Result, error) {
	return c.dispatcher.Dispatch(ctx, params, opts)
}

// Call runs op with params. The Action parameter is set from op.
func (c *Client) Call(ctx context.Context, op Operation, params signer.Params) (parser.Result, error) {
	merged := make(signer.Params, len(params)+1)
	for k, v := range params {
		merged[k] = v
	}
	merged[signer.ParamAction] = op.Action
	return c.Request(ctx, merged, op.options())
}

// Reload drops the connection. The next request establishes a new one.
func (c *Client) Reload() {
	c.dispatcher.Reload()
}

// Close releases the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Name returns the service name.
func (c *Client) Name() string { return c.def.Name }

// Region returns the selected region.
func (c *Client) Region() string { return c.region }

// Host returns the endpoint host.
func (c *Client) Host() string { return c.conn.Config().Host }

// URL returns the endpoint URL.
func (c *Client) URL() string { return c.conn.URL() }

// APIVersion returns the version sent with every request.
func (c *Client) APIVersion() string { return c.def.APIVersion }

func clientLogger(def Definition, cfg Config) *logger.Logger {
	if cfg.Log == nil {
		return logger.GetGlobalLogger()
	}
	log := *cfg.Log
	log.ApplyDefaults()
	return logger.New(&log, def.Name)
}
