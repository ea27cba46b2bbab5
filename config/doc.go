// Package config loads client configuration from an optional YAML file, an
// optional .env file and the process environment.
//
// # Usage
//
//	var cfg service.Config
//	err := config.Load("CLOUDKIT_RDS", &cfg, config.WithConfigFile("rds.yml"))
//
// Environment variables carrying the prefix override file values. The prefix
// is stripped and the rest is lower-cased, so CLOUDKIT_RDS_ACCESS_KEY_ID
// fills the access_key_id key and CLOUDKIT_RDS_TLS_SKIP_VERIFY fills
// tls.skip_verify.
package config
