package service

import (
	"net/http"

	"github.com/kbukum/cloudkit/dispatch"
	"github.com/kbukum/cloudkit/parser"
)

// Operation binds a provider action to its response schema and retry
// eligibility.
type Operation struct {
	// Action is sent as the Action parameter.
	Action string
	// Schema describes the success response. Nil discards the body.
	Schema *parser.Schema
	// Idempotent marks operations that are safe to retry.
	Idempotent bool
	// Expects lists the success statuses. Defaults to 200.
	Expects []int
}

func (op Operation) options() dispatch.Options {
	opts := dispatch.Options{
		Idempotent: op.Idempotent,
		Expects:    op.Expects,
	}
	if len(opts.Expects) == 0 {
		opts.Expects = []int{http.StatusOK}
	}
	if op.Schema != nil {
		opts.Parser = parser.New(*op.Schema)
	}
	return opts
}
