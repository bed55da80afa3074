// Package enrich pads sparse free-text answers with generated technical
// detail before semantic matching, preventing embedding collapse on
// near-empty strings.
package enrich

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/aisca/aisca/internal/ai"
)

// Answers with fewer tokens than this carry too little semantic signal on
// their own. Empty answers are left alone; they are caught by submission
// validation instead.
const minDetailedTokens = 5

const elaborationPrompt = "Expand this skill description with concrete technical detail, as for a professional profile: %s. Be very concise."

// Enricher decides per answer whether to request an elaboration from the
// generative service.
type Enricher struct {
	generator ai.Generator
	logger    *zap.Logger
}

func New(generator ai.Generator, logger *zap.Logger) *Enricher {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Enricher{generator: generator, logger: logger}
}

// Enrich returns the text unchanged when it is empty or already detailed
// (five or more whitespace-delimited tokens). Sparse answers are elaborated
// through the generator; on generator failure the original text is kept, a
// thin answer still scores better than an aborted assessment.
func (e *Enricher) Enrich(ctx context.Context, text string) (string, error) {
	tokens := len(strings.Fields(text))
	if tokens == 0 || tokens >= minDetailedTokens {
		return text, nil
	}

	prompt := fmt.Sprintf(elaborationPrompt, strings.TrimSpace(text))

	enriched, err := e.generator.GenerateContent(ctx, prompt)
	if err != nil {
		e.logger.Warn("enrichment failed, keeping original answer",
			zap.Int("tokens", tokens),
			zap.Error(err),
		)
		return text, nil
	}

	e.logger.Debug("answer enriched",
		zap.Int("original_tokens", tokens),
		zap.Int("enriched_tokens", len(strings.Fields(enriched))),
	)

	return enriched, nil
}
