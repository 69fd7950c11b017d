package ai

import (
	"context"
	"fmt"
)

// DegradedClient is the non-functional client variant handed out when a
// provider cannot be constructed. Its completions deterministically embed the
// construction failure as content, so callers downstream of the gateway never
// have to distinguish a broken backend from a live one: the error surfaces as
// data and fails structured extraction instead of raising.
type DegradedClient struct {
	Reason string
}

// NewDegradedClient wraps a construction failure message as a Client.
func NewDegradedClient(reason string) *DegradedClient {
	return &DegradedClient{Reason: reason}
}

// Provider returns the degraded display label.
func (c *DegradedClient) Provider() string {
	return "Error (degraded)"
}

// Complete returns the stored failure message as completion content.
func (c *DegradedClient) Complete(_ context.Context, _ CompletionRequest) (Completion, error) {
	return Completion{
		Text:     fmt.Sprintf("Error: %s", c.Reason),
		Provider: c.Provider(),
	}, nil
}
