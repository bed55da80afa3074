package submission

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSubmission(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "submission.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeSubmission(t, `{
		"timestamp": "2025-11-03T10:00:00Z",
		"likert": {"python": 5, "sql": 3},
		"free_text": ["Built a churn model", "Airflow DAGs"],
		"technical": {"languages": ["Python", "SQL"], "frameworks": ["Pandas"], "used_genai": true},
		"target_roles": ["Data Scientist"]
	}`)

	sub, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC), sub.Timestamp)
	assert.Equal(t, 5, sub.Likert["python"])
	assert.Len(t, sub.FreeText, 2)
	assert.True(t, sub.Technical.UsedGenAI)
	assert.Equal(t, []string{"Data Scientist"}, sub.TargetRoles)
}

func TestLoadDefaultsTimestamp(t *testing.T) {
	path := writeSubmission(t, `{"likert": {"python": 3}, "free_text": ["something"]}`)

	sub, err := Load(path)
	require.NoError(t, err)
	assert.False(t, sub.Timestamp.IsZero())
}

func TestValidate(t *testing.T) {
	t.Run("accepts usable submission", func(t *testing.T) {
		sub := &Submission{
			Likert:   map[string]int{"python": 5},
			FreeText: []string{"", "built a recommender"},
		}
		require.NoError(t, sub.Validate())
	})

	t.Run("rejects empty profile", func(t *testing.T) {
		sub := &Submission{
			Likert:   map[string]int{"python": 5},
			FreeText: []string{"", "   "},
		}
		require.ErrorIs(t, sub.Validate(), ErrEmptyProfile)
	})

	t.Run("rejects out-of-scale likert", func(t *testing.T) {
		sub := &Submission{
			Likert:   map[string]int{"python": 6},
			FreeText: []string{"fine"},
		}
		err := sub.Validate()
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrEmptyProfile)
	})
}

func TestProfileTextIncludesTechnologies(t *testing.T) {
	sub := &Submission{
		Technical: TechnicalFlags{
			Languages:  []string{"Python"},
			Frameworks: []string{"Pandas", "Spark"},
		},
	}

	text := sub.ProfileText([]string{"Built a churn model", "  ", "Airflow DAGs"})

	assert.Contains(t, text, "Built a churn model")
	assert.Contains(t, text, "Airflow DAGs")
	assert.Contains(t, text, "Technologies: Python, Pandas, Spark")
}

func TestSaveRecord(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	sub := &Submission{
		Timestamp: time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC),
		Likert:    map[string]int{"python": 4},
		FreeText:  []string{"answer"},
	}

	path, err := sub.SaveRecord(dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"python": 4`)
}
