// Package dispatch sends signed requests over a client's connection and turns
// the responses into parsed results or classified errors.
//
// A Dispatcher signs the parameter mapping once, posts it, and then either
// streams a successful body through the caller's parser or hands a failure
// body to the service's classifier. Idempotent requests are retried on
// transient failures under a bounded policy; everything else gets a single
// attempt.
//
//	d := dispatch.New(conn, sig, cls)
//	result, err := d.Dispatch(ctx, signer.Params{"Action": "DescribeDBInstances"}, dispatch.Options{
//	    Parser:     parser.New(schema),
//	    Idempotent: true,
//	})
//
// Dispatch calls on one Dispatcher are serialised: one request is in flight
// per connection.
package dispatch
