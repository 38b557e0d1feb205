// Package generator defines the contract between the harness and the
// text-generation service under evaluation. The harness makes no assumptions
// about a backend beyond this interface: a call either returns free-form text
// or a typed Error classifying the failure.
package generator

import "context"

// Generator produces a free-form natural-language response for a prompt pair.
// Implementations must be safe for concurrent use; the executor calls
// Generate from multiple workers.
type Generator interface {
	// Generate runs one completion. The returned text is unparsed model
	// output; errors should be *Error values so the executor can
	// distinguish rate limiting from genuine failures.
	Generate(ctx context.Context, systemPrompt, userMessage string) (string, error)

	// Name identifies the backend in logs and reports.
	Name() string
}
