package reference

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	calls int
}

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	s.calls++
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{float32(i), 1, 0}
	}
	return vectors, nil
}

func (s *stubEmbedder) Dimensions() int { return 3 }
func (s *stubEmbedder) Model() string   { return "stub" }

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCompetenciesDropsIncompleteRows(t *testing.T) {
	path := writeFile(t, "competencies.csv", `role,competency
Data Scientist,Statistical modelling
Data Scientist,
,Orphan competency
Data Engineer,Pipeline orchestration
`)

	table, err := LoadCompetencies(path)
	require.NoError(t, err)

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"Data Engineer", "Data Scientist"}, table.Roles())
	assert.Len(t, table.ForRole("Data Scientist"), 1)
}

func TestLoadCompetenciesRequiresColumns(t *testing.T) {
	path := writeFile(t, "competencies.csv", `job,skills
Data Scientist,Statistical modelling
`)

	_, err := LoadCompetencies(path)
	require.Error(t, err)
}

func TestComputeEmbeddingsUsesOneBatchCall(t *testing.T) {
	path := writeFile(t, "competencies.csv", `role,competency
Data Scientist,Statistical modelling
Data Engineer,Pipeline orchestration
`)

	table, err := LoadCompetencies(path)
	require.NoError(t, err)

	embedder := &stubEmbedder{}
	require.NoError(t, table.ComputeEmbeddings(context.Background(), embedder))

	assert.Equal(t, 1, embedder.calls)
	for _, row := range table.Rows {
		assert.NotEmpty(t, row.Embedding)
	}
}

func TestLoadNumericProfiles(t *testing.T) {
	path := writeFile(t, "profiles.csv", `role,python,sql,scala,ml,dl,stats,mlops,data_engineering,genai
Data Scientist,5,3,1,4,2,3,2,2,1
Data Engineer,4,5,3,2,1,2,3,5,0
`)

	table, err := LoadNumericProfiles(path)
	require.NoError(t, err)

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, "Data Scientist", table.Profiles[0].Role)
	assert.Len(t, table.Profiles[0].Features, FeatureCount)
	assert.Equal(t, 1.0, table.Profiles[0].Features[FeatureCount-1])
}

func TestLoadNumericProfilesReportsMissingColumns(t *testing.T) {
	path := writeFile(t, "profiles.csv", `role,python,sql,scala,ml,dl,stats,data_engineering,genai
Data Scientist,5,3,1,4,2,3,2,1
`)

	_, err := LoadNumericProfiles(path)
	require.Error(t, err)

	var mismatch *SchemaMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, []string{"mlops"}, mismatch.Missing)
}

func TestLoadNumericProfilesRejectsNonNumericValues(t *testing.T) {
	path := writeFile(t, "profiles.csv", `role,python,sql,scala,ml,dl,stats,mlops,data_engineering,genai
Data Scientist,five,3,1,4,2,3,2,2,1
`)

	_, err := LoadNumericProfiles(path)
	require.Error(t, err)
}
