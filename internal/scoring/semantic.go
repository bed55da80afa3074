package scoring

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aisca/aisca/internal/ai"
	"github.com/aisca/aisca/internal/reference"
)

// RowScore records the similarity between the user profile and one
// competency row. The deliverable generator uses the lowest-scoring rows of
// the recommended role as the competency gaps.
type RowScore struct {
	Role       string
	Competency string
	Similarity float64
}

// SemanticMatcher scores the enriched profile text against the competency
// reference table using embedding similarity.
type SemanticMatcher struct {
	embedder ai.Embedder
	logger   *zap.Logger
}

func NewSemanticMatcher(embedder ai.Embedder, logger *zap.Logger) *SemanticMatcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SemanticMatcher{embedder: embedder, logger: logger}
}

// Match embeds the profile text once, computes cosine similarity against
// every precomputed reference embedding and averages the similarities per
// role. The returned series is raw; callers normalize it before fusion.
func (m *SemanticMatcher) Match(ctx context.Context, profileText string, table *reference.CompetencyTable) (Series, []RowScore, error) {
	vectors, err := m.embedder.Embed(ctx, []string{profileText})
	if err != nil {
		return nil, nil, fmt.Errorf("embedding profile: %w", err)
	}
	profile := vectors[0]

	sums := make(map[string]float64)
	counts := make(map[string]int)
	rowScores := make([]RowScore, 0, table.Len())

	for _, row := range table.Rows {
		if len(row.Embedding) == 0 {
			return nil, nil, fmt.Errorf("competency %q of role %q has no embedding", row.Text, row.Role)
		}

		similarity, err := Cosine32(profile, row.Embedding)
		if err != nil {
			return nil, nil, fmt.Errorf("scoring competency %q: %w", row.Text, err)
		}

		sums[row.Role] += similarity
		counts[row.Role]++
		rowScores = append(rowScores, RowScore{
			Role:       row.Role,
			Competency: row.Text,
			Similarity: similarity,
		})
	}

	series := make(Series, len(sums))
	for role, sum := range sums {
		series[role] = sum / float64(counts[role])
	}

	m.logger.Debug("semantic matching completed",
		zap.Int("reference_rows", table.Len()),
		zap.Int("roles", len(series)),
	)

	return series, rowScores, nil
}
