// Package compute is the compute (EC2-style) service client.
//
// Compute error codes are namespaced by resource, e.g.
// InvalidKeyPair.NotFound or InvalidGroup.Duplicate; the classifier keys on
// the last segment so every NotFound and Duplicate code maps to a kind.
package compute
