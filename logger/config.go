package logger

import (
	"slices"
	"strings"

	"github.com/kbukum/cloudkit/errors"
)

var (
	levels  = []string{"trace", "debug", "info", "warn", "error", "disabled"}
	formats = []string{FormatJSON, FormatConsole, FormatPretty}
	outputs = []string{"stdout", "stderr"}
)

// Config is the logging section of a client configuration.
type Config struct {
	Level     string `yaml:"level" mapstructure:"level"`
	Format    string `yaml:"format" mapstructure:"format"`
	Output    string `yaml:"output" mapstructure:"output"`
	NoColor   bool   `yaml:"no_color" mapstructure:"no_color"`
	Timestamp bool   `yaml:"timestamp" mapstructure:"timestamp"`
	Caller    bool   `yaml:"caller" mapstructure:"caller"`
}

// ApplyDefaults fills empty fields: info level, JSON, stderr.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = FormatJSON
	}
	if c.Output == "" {
		c.Output = "stderr"
	}
}

// Validate reports an unknown level, format or output as a configuration
// error naming the offending field.
func (c *Config) Validate() error {
	check := []struct {
		field   string
		value   string
		allowed []string
	}{
		{"log.level", c.Level, levels},
		{"log.format", c.Format, formats},
		{"log.output", c.Output, outputs},
	}
	for _, ch := range check {
		if !slices.Contains(ch.allowed, strings.ToLower(ch.value)) {
			return errors.Configuration("%s must be one of %v (got %q)", ch.field, ch.allowed, ch.value).
				WithDetail("field", ch.field)
		}
	}
	return nil
}
