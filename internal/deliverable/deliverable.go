// Package deliverable produces the final user-facing text: a short
// professional bio and an improvement roadmap for the recommended role.
package deliverable

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/aisca/aisca/internal/ai"
	"github.com/aisca/aisca/internal/scoring"
)

// gapCount is how many of the weakest-matching competencies feed the
// roadmap prompt.
const gapCount = 3

const promptTemplate = `You are an HR expert. Here is the user profile: %s
Target role: %s
Detected gaps: %s

DELIVERABLES:
1. Professional bio (3 lines max).
2. Progression roadmap (3 key steps).
Answer in Markdown.`

// Generator builds the deliverable prompt and delegates to the generative
// client. The output is opaque formatted text; it is never parsed.
type Generator struct {
	generator ai.Generator
	logger    *zap.Logger
}

func New(generator ai.Generator, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{generator: generator, logger: logger}
}

// Gaps returns the competencies of the given role with the lowest recorded
// similarity, weakest first. Ties break alphabetically so the selection is
// deterministic.
func Gaps(role string, rows []scoring.RowScore) []string {
	matching := make([]scoring.RowScore, 0)
	for _, row := range rows {
		if row.Role == role {
			matching = append(matching, row)
		}
	}

	sort.Slice(matching, func(i, j int) bool {
		if matching[i].Similarity != matching[j].Similarity {
			return matching[i].Similarity < matching[j].Similarity
		}
		return matching[i].Competency < matching[j].Competency
	})

	if len(matching) > gapCount {
		matching = matching[:gapCount]
	}

	gaps := make([]string, len(matching))
	for i, row := range matching {
		gaps[i] = row.Competency
	}
	return gaps
}

// Generate asks the generative client for the bio and roadmap of the top
// role, grounded in the weakest-matching competencies.
func (g *Generator) Generate(ctx context.Context, profileText, topRole string, rows []scoring.RowScore) (string, error) {
	gaps := Gaps(topRole, rows)
	if len(gaps) == 0 {
		return "", fmt.Errorf("no competency rows recorded for role %q", topRole)
	}

	prompt := fmt.Sprintf(promptTemplate, profileText, topRole, strings.Join(gaps, ", "))

	g.logger.Debug("generating deliverable",
		zap.String("role", topRole),
		zap.Strings("gaps", gaps),
	)

	return g.generator.GenerateContent(ctx, prompt)
}
