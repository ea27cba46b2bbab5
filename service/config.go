package service

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/kbukum/cloudkit/logger"
	"github.com/kbukum/cloudkit/resilience"
	"github.com/kbukum/cloudkit/transport"
	"github.com/kbukum/cloudkit/validation"
)

// Config holds the per-client settings. It can be filled by config.Load.
type Config struct {
	// AccessKeyID and SecretAccessKey are static credentials. They are
	// ignored when Credentials is set.
	AccessKeyID     string `yaml:"access_key_id" mapstructure:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key" mapstructure:"secret_access_key"`

	// Region selects the endpoint host from the definition's region table.
	Region string `yaml:"region" mapstructure:"region"`
	// Host overrides the region table.
	Host string `yaml:"host" mapstructure:"host" validate:"omitempty,hostname|ip"`
	Path string `yaml:"path" mapstructure:"path"`
	// Port defaults to the scheme's port.
	Port   int    `yaml:"port" mapstructure:"port" validate:"gte=0,lte=65535"`
	Scheme string `yaml:"scheme" mapstructure:"scheme" validate:"omitempty,oneof=http https"`

	// Persistent keeps the connection open between requests.
	Persistent bool          `yaml:"persistent" mapstructure:"persistent"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	TLS   *transport.TLSConfig    `yaml:"tls" mapstructure:"tls"`
	Retry *resilience.RetryConfig `yaml:"retry" mapstructure:"retry"`
	// RateLimit caps outgoing requests, retries included.
	RateLimit *resilience.RateLimiterConfig `yaml:"rate_limit" mapstructure:"rate_limit"`

	// Log builds the client logger when no WithLogger option is given.
	Log *logger.Config `yaml:"log" mapstructure:"log"`

	// Credentials resolves the key pair once at construction.
	Credentials aws.CredentialsProvider `yaml:"-" mapstructure:"-" validate:"-"`
}

// Validate checks the tag constraints and the credential requirement.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}

	v := validation.New()
	if c.Credentials == nil {
		v.Required("access_key_id", c.AccessKeyID)
		v.Required("secret_access_key", c.SecretAccessKey)
	}
	if c.Retry != nil {
		v.Check(c.Retry.MaxAttempts >= 0, "retry.max_attempts", "must not be negative")
		v.Check(c.Retry.Jitter >= 0 && c.Retry.Jitter <= 1, "retry.jitter", "must be between 0 and 1")
	}
	if c.Log != nil {
		log := *c.Log
		log.ApplyDefaults()
		if err := log.Validate(); err != nil {
			return err
		}
	}
	if c.RateLimit != nil {
		v.Check(c.RateLimit.Rate >= 0, "rate_limit.rate", "must not be negative")
		v.Check(c.RateLimit.Burst >= 0, "rate_limit.burst", "must not be negative")
	}
	return v.Validate()
}
