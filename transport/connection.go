package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/kbukum/cloudkit/errors"
)

// Response is a transient provider response. The caller must close Body.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}

// Connection is a lazily established HTTP connection to one endpoint.
type Connection struct {
	cfg       Config
	url       string
	tlsConfig *tls.Config

	mu         sync.Mutex
	client     *http.Client
	transport  *http.Transport
	generation uint64
}

// New creates a Connection for the given configuration. No network activity
// happens until the first Post.
func New(cfg Config) (*Connection, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tlsCfg, err := cfg.TLS.Build()
	if err != nil {
		return nil, err
	}

	return &Connection{
		cfg:       cfg,
		url:       buildURL(&cfg),
		tlsConfig: tlsCfg,
	}, nil
}

func buildURL(cfg *Config) string {
	host := cfg.Host
	if cfg.Port != 0 && cfg.Port != cfg.DefaultPort() {
		host = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	}
	return cfg.Scheme + "://" + host + cfg.Path
}

// URL returns the endpoint URL requests are posted to.
func (c *Connection) URL() string {
	return c.url
}

// Config returns the effective configuration.
func (c *Connection) Config() Config {
	return c.cfg
}

// Generation returns how many times the connection has been established.
func (c *Connection) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Post sends body to the endpoint. header is copied onto the request; a
// "Host" entry overrides the request host. Connection failures are returned
// as retryable transport errors.
func (c *Connection) Post(ctx context.Context, body []byte, header http.Header) (*Response, error) {
	client := c.dial()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Transport(err)
	}
	for k, vs := range header {
		req.Header[k] = append([]string(nil), vs...)
	}
	if host := req.Header.Get("Host"); host != "" {
		req.Host = host
		req.Header.Del("Host")
	}
	if req.Header.Get("User-Agent") == "" && c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, classifyError(ctx, err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
	}, nil
}

// Reset tears the connection down. The next Post re-establishes it.
func (c *Connection) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.transport != nil {
		c.transport.CloseIdleConnections()
	}
	c.client = nil
	c.transport = nil
}

// Close releases the connection. It is equivalent to Reset.
func (c *Connection) Close() error {
	c.Reset()
	return nil
}

func (c *Connection) dial() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		return c.client
	}

	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.DisableKeepAlives = !c.cfg.Persistent
	tr.MaxIdleConnsPerHost = 1
	if c.tlsConfig != nil {
		tr.TLSClientConfig = c.tlsConfig.Clone()
	}

	c.transport = tr
	c.client = &http.Client{
		Transport: tr,
		Timeout:   c.cfg.Timeout,
	}
	c.generation++
	return c.client
}

// classifyError maps a client failure to a transport error. A cancelled
// context is not retryable; deadlines and network timeouts are.
func classifyError(ctx context.Context, err error) *errors.Error {
	if stderrors.Is(ctx.Err(), context.Canceled) {
		e := errors.Transport(err)
		e.Retryable = false
		return e
	}
	var netErr net.Error
	if stderrors.Is(err, context.DeadlineExceeded) || (stderrors.As(err, &netErr) && netErr.Timeout()) {
		return errors.Timeout(err)
	}
	return errors.Transport(err)
}
