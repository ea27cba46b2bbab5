// Package version reports the cloudkit build version and the User-Agent
// string sent with every provider request.
//
// The version and commit are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/cloudkit/version.Version=1.2.0"
package version
