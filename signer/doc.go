// Package signer produces the canonical, signed request body for the
// provider query APIs (signature version 2, HMAC-SHA256).
//
// Signing is a pure function of the parameters, the signing context and the
// clock: the same logical request always yields the same body, whatever the
// insertion order of its parameters.
//
//	s, err := signer.New(signer.Context{
//	    Host:        "rds.us-east-1.amazonaws.com",
//	    Path:        "/",
//	    Port:        443,
//	    Version:     "2010-07-28",
//	    Credentials: creds,
//	})
//	body, err := s.Sign(signer.Params{"Action": "DescribeDBInstances"})
package signer
