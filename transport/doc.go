// Package transport owns the single HTTP connection a client uses to reach
// one provider endpoint.
//
// A Connection is bound to {scheme, host, port, path}. It is established
// lazily on the first Post, torn down by Reset, and re-established on the
// next Post. Connection-level failures are returned as retryable transport
// errors from the errors package.
//
// # Usage
//
//	conn, err := transport.New(transport.Config{
//	    Scheme:     "https",
//	    Host:       "rds.us-east-1.amazonaws.com",
//	    Persistent: true,
//	})
//
//	resp, err := conn.Post(ctx, body, header)
//	defer resp.Body.Close()
package transport
