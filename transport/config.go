package transport

import (
	"strings"
	"time"

	"github.com/kbukum/cloudkit/errors"
)

const (
	defaultScheme  = "https"
	defaultPath    = "/"
	defaultTimeout = 30 * time.Second
)

// Config configures a Connection.
type Config struct {
	// Scheme is "http" or "https". Defaults to https.
	Scheme string `yaml:"scheme" mapstructure:"scheme"`

	// Host is the endpoint host name.
	Host string `yaml:"host" mapstructure:"host"`

	// Port is the endpoint port. Zero selects the scheme default.
	Port int `yaml:"port" mapstructure:"port"`

	// Path is the request path. Defaults to "/".
	Path string `yaml:"path" mapstructure:"path"`

	// Persistent keeps the connection alive between requests.
	Persistent bool `yaml:"persistent" mapstructure:"persistent"`

	// Timeout bounds a single attempt. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is sent on every request when the caller sets none.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`

	// TLS configures certificate verification for https endpoints.
	TLS *TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Scheme == "" {
		c.Scheme = defaultScheme
	}
	c.Scheme = strings.ToLower(c.Scheme)
	if c.Path == "" {
		c.Path = defaultPath
	}
	if !strings.HasPrefix(c.Path, "/") {
		c.Path = "/" + c.Path
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Scheme != "http" && c.Scheme != "https" {
		return errors.Configuration("transport: unsupported scheme %q", c.Scheme)
	}
	if c.Host == "" {
		return errors.Configuration("transport: host is required")
	}
	if strings.ContainsAny(c.Host, "/:?#@ ") {
		return errors.Configuration("transport: invalid host %q", c.Host)
	}
	if c.Port < 0 || c.Port > 65535 {
		return errors.Configuration("transport: port %d out of range", c.Port)
	}
	if c.Timeout <= 0 {
		return errors.Configuration("transport: timeout must be positive")
	}
	return c.TLS.Validate()
}

// DefaultPort returns the well-known port for the scheme.
func (c *Config) DefaultPort() int {
	if c.Scheme == "http" {
		return 80
	}
	return 443
}
