// Package logger provides structured logging for cloudkit clients using
// zerolog.
//
// Clients default to a no-op logger; pass one built from Config to see
// request activity. Credentials are never written to the log.
//
// # Configuration
//
//	logger:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.New(&logger.Config{Level: "debug", Format: "json"}, "rds")
//	log.WithComponent("dispatch").Info("request sent", logger.Fields("action", "DescribeDBInstances"))
package logger
