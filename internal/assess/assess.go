// Package assess runs one submission through the full scoring pipeline:
// enrichment, semantic matching, numeric matching, fusion and ranking.
package assess

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aisca/aisca/internal/enrich"
	"github.com/aisca/aisca/internal/reference"
	"github.com/aisca/aisca/internal/scoring"
	"github.com/aisca/aisca/internal/submission"
)

// Deps aggregates the long-lived collaborators shared by every assessment.
// All of them are initialized once at startup and read-only afterwards.
type Deps struct {
	Enricher     *enrich.Enricher
	Semantic     *scoring.SemanticMatcher
	Numeric      *scoring.NumericMatcher
	Competencies *reference.CompetencyTable
	Profiles     *reference.NumericProfileTable
	Logger       *zap.Logger
}

// Result is the outcome of scoring one submission.
type Result struct {
	ProfileText string
	Semantic    scoring.Series
	Numeric     scoring.Series
	RowScores   []scoring.RowScore
	Ranked      []scoring.RankedRole
}

// TopRole returns the best-ranked role name.
func (r *Result) TopRole() string {
	if len(r.Ranked) == 0 {
		return ""
	}
	return r.Ranked[0].Role
}

type Assessor struct {
	deps Deps
}

func New(deps Deps) *Assessor {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &Assessor{deps: deps}
}

// Run scores the submission. One submission is processed at a time; the
// pipeline holds no mutable state between runs.
func (a *Assessor) Run(ctx context.Context, sub *submission.Submission) (*Result, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	logger := a.deps.Logger

	answers := make([]string, len(sub.FreeText))
	enriched := 0
	for i, answer := range sub.FreeText {
		expanded, err := a.deps.Enricher.Enrich(ctx, answer)
		if err != nil {
			return nil, fmt.Errorf("enriching answer %d: %w", i+1, err)
		}
		if expanded != answer {
			enriched++
		}
		answers[i] = expanded
	}

	profileText := sub.ProfileText(answers)
	logger.Info("enrichment",
		zap.Int("answers", len(answers)),
		zap.Int("enriched", enriched),
	)

	rawSemantic, rowScores, err := a.deps.Semantic.Match(ctx, profileText, a.deps.Competencies)
	if err != nil {
		return nil, fmt.Errorf("semantic matching: %w", err)
	}

	semantic := rawSemantic.Normalize()
	logger.Info("semantic matching",
		zap.Int("roles", len(semantic)),
		zap.Int("reference_rows", a.deps.Competencies.Len()),
	)

	numeric, err := a.deps.Numeric.Match(sub.Likert, sub.Technical.UsedGenAI, a.deps.Profiles)
	if err != nil {
		return nil, fmt.Errorf("numeric matching: %w", err)
	}

	logger.Info("numeric matching", zap.Int("roles", len(numeric)))

	ranked := scoring.Fuse(semantic, numeric)
	if len(ranked) == 0 {
		return nil, errors.New("no roles to rank, both reference tables are empty")
	}

	logger.Info("fusion",
		zap.Int("roles", len(ranked)),
		zap.String("top_role", ranked[0].Role),
		zap.Float64("top_score", ranked[0].Score),
	)

	return &Result{
		ProfileText: profileText,
		Semantic:    semantic,
		Numeric:     numeric,
		RowScores:   rowScores,
		Ranked:      ranked,
	}, nil
}
