package testutil

import (
	"context"

	"github.com/kbukum/cloudkit/component"
)

// TestComponent extends component.Component with a Reset used between test
// cases to restore the initial state.
type TestComponent interface {
	component.Component

	// Reset restores the component to its initial state.
	Reset(ctx context.Context) error
}
