package assess

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/aisca/aisca/internal/enrich"
	"github.com/aisca/aisca/internal/reference"
	"github.com/aisca/aisca/internal/scoring"
	"github.com/aisca/aisca/internal/submission"
)

const competenciesCSV = `role,competency
Data Scientist,machine learning models
Data Scientist,statistics and experimentation
Data Engineer,spark pipelines
Data Engineer,sql warehousing
`

const profilesCSV = `role,python,sql,scala,ml,dl,stats,mlops,data_engineering,genai
Data Scientist,5,3,1,5,4,5,2,2,1
Data Engineer,4,5,4,2,1,2,3,5,0
`

// stubEmbedder maps texts onto a two-axis space: machine-learning-flavoured
// text on the first axis, data-engineering-flavoured text on the second.
type stubEmbedder struct {
	calls int
}

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	s.calls++
	out := make([][]float32, len(texts))
	for i, text := range texts {
		lower := strings.ToLower(text)
		v := []float32{0, 0}
		if strings.Contains(lower, "machine learning") || strings.Contains(lower, "statistics") {
			v[0] = 1
		}
		if strings.Contains(lower, "spark") || strings.Contains(lower, "sql") {
			v[1] = 1
		}
		out[i] = v
	}

	return out, nil
}

func (s *stubEmbedder) Dimensions() int { return 2 }
func (s *stubEmbedder) Model() string   { return "stub-embedder" }

type stubGenerator struct {
	response string
	err      error
	calls    int
}

func (s *stubGenerator) GenerateContent(_ context.Context, _ string) (string, error) {
	s.calls++
	return s.response, s.err
}

func (s *stubGenerator) Model() string { return "stub-generator" }

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}

	return path
}

func newTestAssessor(t *testing.T, generator *stubGenerator) *Assessor {
	t.Helper()

	embedder := &stubEmbedder{}
	logger := zap.NewNop()

	competencies, err := reference.LoadCompetencies(writeFile(t, "competencies.csv", competenciesCSV))
	if err != nil {
		t.Fatalf("loading competencies: %v", err)
	}
	if err := competencies.ComputeEmbeddings(context.Background(), embedder); err != nil {
		t.Fatalf("computing embeddings: %v", err)
	}

	profiles, err := reference.LoadNumericProfiles(writeFile(t, "profiles.csv", profilesCSV))
	if err != nil {
		t.Fatalf("loading numeric profiles: %v", err)
	}

	return New(Deps{
		Enricher:     enrich.New(generator, logger),
		Semantic:     scoring.NewSemanticMatcher(embedder, logger),
		Numeric:      scoring.NewNumericMatcher(logger),
		Competencies: competencies,
		Profiles:     profiles,
		Logger:       logger,
	})
}

func TestRunRanksDataScientistFirst(t *testing.T) {
	generator := &stubGenerator{response: "unused"}
	assessor := newTestAssessor(t, generator)

	sub := &submission.Submission{
		Timestamp: time.Now().UTC(),
		Likert:    map[string]int{"python": 5, "ml": 5, "stats": 5},
		FreeText:  []string{"I build machine learning models and run statistics daily"},
		Technical: submission.TechnicalFlags{
			Languages: []string{"Python"},
			UsedGenAI: true,
		},
	}

	result, err := assessor.Run(context.Background(), sub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := result.TopRole(); got != "Data Scientist" {
		t.Fatalf("expected Data Scientist on top, got %q", got)
	}
	if len(result.Ranked) != 2 {
		t.Fatalf("expected 2 ranked roles, got %d", len(result.Ranked))
	}
	if len(result.RowScores) != 4 {
		t.Fatalf("expected a row score per competency row, got %d", len(result.RowScores))
	}
	if !strings.Contains(result.ProfileText, "machine learning") {
		t.Fatalf("profile text lost the free-text answer: %q", result.ProfileText)
	}

	top := result.Ranked[0]
	if top.Score <= result.Ranked[1].Score {
		t.Fatalf("ranking not descending: %+v", result.Ranked)
	}
	if top.Semantic == 0 && top.Numeric == 0 {
		t.Fatalf("component scores missing from ranked role: %+v", top)
	}

	// A detailed answer must pass through without a generation call.
	if generator.calls != 0 {
		t.Fatalf("expected no enrichment calls, got %d", generator.calls)
	}
}

func TestRunEnrichesSparseAnswers(t *testing.T) {
	generator := &stubGenerator{response: "Builds machine learning models with pandas and scikit-learn."}
	assessor := newTestAssessor(t, generator)

	sub := &submission.Submission{
		Timestamp: time.Now().UTC(),
		Likert:    map[string]int{"python": 4},
		FreeText:  []string{"pandas modelling"},
	}

	result, err := assessor.Run(context.Background(), sub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if generator.calls != 1 {
		t.Fatalf("expected 1 enrichment call, got %d", generator.calls)
	}
	if !strings.Contains(result.ProfileText, generator.response) {
		t.Fatalf("profile text missing enriched answer: %q", result.ProfileText)
	}
}

func TestRunErrorsOnEmptyReferenceTables(t *testing.T) {
	logger := zap.NewNop()
	assessor := New(Deps{
		Enricher:     enrich.New(&stubGenerator{}, logger),
		Semantic:     scoring.NewSemanticMatcher(&stubEmbedder{}, logger),
		Numeric:      scoring.NewNumericMatcher(logger),
		Competencies: &reference.CompetencyTable{},
		Profiles:     &reference.NumericProfileTable{},
		Logger:       logger,
	})

	sub := &submission.Submission{
		Timestamp: time.Now().UTC(),
		Likert:    map[string]int{"python": 3},
		FreeText:  []string{"I build machine learning models and run statistics daily"},
	}

	if _, err := assessor.Run(context.Background(), sub); err == nil {
		t.Fatal("expected an error when no roles can be ranked")
	}
}

func TestRunRejectsEmptyProfile(t *testing.T) {
	assessor := newTestAssessor(t, &stubGenerator{})

	sub := &submission.Submission{
		Timestamp: time.Now().UTC(),
		Likert:    map[string]int{"python": 3},
		FreeText:  []string{"   ", ""},
	}

	if _, err := assessor.Run(context.Background(), sub); !errors.Is(err, submission.ErrEmptyProfile) {
		t.Fatalf("expected ErrEmptyProfile, got %v", err)
	}
}
