package ai

import "context"

// Generator produces text from a prompt using an external generative service.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Embedder converts text into fixed-dimensionality embedding vectors.
// It is initialized once at process start and shared read-only afterwards.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Model() string
}
