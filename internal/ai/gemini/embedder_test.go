package gemini

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/aisca/aisca/internal/ai"
)

type fakeEmbedCaller struct {
	resp  *genai.EmbedContentResponse
	err   error
	texts []string
}

func (f *fakeEmbedCaller) EmbedContent(_ context.Context, _ string, contents []*genai.Content, _ *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	for _, content := range contents {
		for _, part := range content.Parts {
			f.texts = append(f.texts, part.Text)
		}
	}
	return f.resp, f.err
}

func embedResponse(vectors ...[]float32) *genai.EmbedContentResponse {
	resp := &genai.EmbedContentResponse{}
	for _, vector := range vectors {
		resp.Embeddings = append(resp.Embeddings, &genai.ContentEmbedding{Values: vector})
	}
	return resp
}

func newTestEmbedder(models embedCaller) *Embedder {
	return &Embedder{
		models:     models,
		model:      "gemini-embedding-001",
		dimensions: 3,
		logger:     zap.NewNop(),
	}
}

func TestEmbedderPreservesInputOrder(t *testing.T) {
	models := &fakeEmbedCaller{
		resp: embedResponse([]float32{1, 0, 0}, []float32{0, 1, 0}),
	}

	e := newTestEmbedder(models)

	vectors, err := e.Embed(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(vectors) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vectors))
	}

	if vectors[0][0] != 1 || vectors[1][1] != 1 {
		t.Fatalf("vectors out of order: %v", vectors)
	}

	if len(models.texts) != 2 || models.texts[0] != "first" || models.texts[1] != "second" {
		t.Fatalf("unexpected texts sent upstream: %v", models.texts)
	}
}

func TestEmbedderRejectsCountMismatch(t *testing.T) {
	models := &fakeEmbedCaller{
		resp: embedResponse([]float32{1, 0, 0}),
	}

	e := newTestEmbedder(models)

	_, err := e.Embed(context.Background(), []string{"first", "second"})
	if err == nil {
		t.Fatal("expected error on embedding count mismatch")
	}

	var upstream *ai.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %T: %v", err, err)
	}
}

func TestEmbedderWrapsUpstreamFailure(t *testing.T) {
	models := &fakeEmbedCaller{err: errors.New("boom")}

	e := newTestEmbedder(models)

	_, err := e.Embed(context.Background(), []string{"text"})
	if err == nil {
		t.Fatal("expected error")
	}

	var upstream *ai.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %T: %v", err, err)
	}
}

func TestEmbedderRejectsEmptyInput(t *testing.T) {
	e := newTestEmbedder(&fakeEmbedCaller{})

	if _, err := e.Embed(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty input")
	}

	if _, err := e.Embed(context.Background(), []string{"ok", "  "}); err == nil {
		t.Fatal("expected error for blank text")
	}
}
