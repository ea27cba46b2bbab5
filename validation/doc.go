// Package validation checks client configuration before any connection is
// made. Failures are reported as configuration errors from the errors
// package, with the offending fields listed under the "fields" detail.
//
// # Struct Tag Validation
//
//	type Config struct {
//	    Scheme string `mapstructure:"scheme" validate:"omitempty,oneof=http https"`
//	    Port   int    `mapstructure:"port" validate:"gte=0,lte=65535"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Required("access_key_id", id)
//	v.OneOf("region", region, known...)
//	err := v.Validate()
package validation
