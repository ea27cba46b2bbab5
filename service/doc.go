// Package service is the construction boundary of cloudkit clients.
//
// A Definition describes one provider API: its name, API version, region
// table and error code table. New combines a Definition with a Config to
// build a Client that owns one connection, one signer and one dispatcher.
//
//	client, err := service.New(ctx, rds.Definition, service.Config{
//		AccessKeyID:     "AKID",
//		SecretAccessKey: "secret",
//		Region:          "eu-west-1",
//	})
//
// Unknown regions and missing credentials fail construction with a
// CONFIGURATION error. Component wraps a Client with Start/Stop/Health.
package service
