package embedding

import "context"

// EmbeddingProvider defines the interface for generating text embeddings.
// Implementations must honor ctx cancellation and enforce a client
// timeout so a stalled backend cannot hang the caller.
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error)
}
