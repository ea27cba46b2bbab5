// Package component defines the lifecycle contract shared by cloudkit
// service clients and test fixtures.
//
// A Component can be started, stopped and asked for its health. The Registry
// starts components in registration order and stops them in reverse.
//
// # Interfaces
//
//   - Component: Start/Stop/Health lifecycle
//   - Describable: one-line summary of what a component talks to
package component
