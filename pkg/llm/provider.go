// Package llm provides abstractions for vision LLM provider integration.
//
// Providers handle API communication with LLM services and return plain
// messages. The pipeline layer is responsible for prompt construction and
// for interpreting the model's response; providers stay focused on
// transport concerns so they remain reusable and independently testable.
package llm

import (
	"context"

	"github.com/entrhq/uiscope/pkg/types"
)

// Provider defines the interface for LLM integrations.
//
// Screenshot analysis consumes the model response as a single blob, so the
// interface is non-streaming: Complete blocks until the full response is
// available or the context is cancelled.
type Provider interface {
	// Complete sends messages (optionally carrying inline images) to the
	// LLM and returns the assistant's full response message.
	Complete(ctx context.Context, messages []*types.Message) (*types.Message, error)

	// GetModelInfo returns information about the LLM model being used.
	GetModelInfo() *types.ModelInfo

	// GetModel returns the model name being used.
	GetModel() string

	// GetBaseURL returns the base URL being used for API requests.
	GetBaseURL() string
}
