package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/aisca/aisca/internal/ai"
)

const (
	defaultEmbeddingModel      = "gemini-embedding-001"
	defaultEmbeddingDimensions = 768
)

type embedCaller interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Embedder converts text into embedding vectors via the Gemini embedding
// models. It is safe for shared read-only use after construction.
type Embedder struct {
	models     embedCaller
	model      string
	dimensions int
	logger     *zap.Logger
}

// NewEmbedder creates an Embedder on top of the shared genai client.
func NewEmbedder(client *genai.Client, model string, dimensions int, logger *zap.Logger) *Embedder {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultEmbeddingModel
	}

	if dimensions <= 0 {
		dimensions = defaultEmbeddingDimensions
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Embedder{
		models:     client.Models,
		model:      model,
		dimensions: dimensions,
		logger:     logger,
	}
}

// Embed returns one embedding vector per input text, in input order.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.New("at least one text is required")
	}

	contents := make([]*genai.Content, 0, len(texts))
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("text at index %d is empty", i)
		}
		contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
	}

	config := &genai.EmbedContentConfig{
		OutputDimensionality: genai.Ptr[int32](int32(e.dimensions)),
	}

	resp, err := e.models.EmbedContent(ctx, e.model, contents, config)
	if err != nil {
		return nil, &ai.UpstreamError{Err: err}
	}

	if resp == nil || len(resp.Embeddings) != len(texts) {
		got := 0
		if resp != nil {
			got = len(resp.Embeddings)
		}
		return nil, &ai.UpstreamError{
			Err: fmt.Errorf("expected %d embeddings, got %d", len(texts), got),
		}
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, embedding := range resp.Embeddings {
		if embedding == nil || len(embedding.Values) == 0 {
			return nil, &ai.UpstreamError{
				Err: fmt.Errorf("embedding at index %d is empty", i),
			}
		}
		vectors[i] = embedding.Values
	}

	e.logger.Debug("embedded texts",
		zap.Int("count", len(texts)),
		zap.Int("dimensions", len(vectors[0])),
	)

	return vectors, nil
}

// Dimensions returns the configured output dimensionality.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

func (e *Embedder) Model() string {
	if e == nil {
		return ""
	}
	return e.model
}
