package scoring

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/aisca/aisca/internal/reference"
)

const (
	likertScale        = 5.0
	defaultLikertValue = 3
)

// NumericMatcher scores the user's self-ratings against the per-role numeric
// profiles with cosine similarity.
type NumericMatcher struct {
	logger *zap.Logger
}

func NewNumericMatcher(logger *zap.Logger) *NumericMatcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &NumericMatcher{logger: logger}
}

// UserVector builds the fixed-order feature vector: each Likert axis scaled
// from 1-5 to 0-1 (missing axes default to 3), followed by the genai flag.
func UserVector(likert map[string]int, usedGenAI bool) []float64 {
	vector := make([]float64, 0, reference.FeatureCount)
	for _, axis := range reference.LikertAxes {
		value, ok := likert[axis]
		if !ok {
			value = defaultLikertValue
		}
		vector = append(vector, float64(value)/likertScale)
	}

	genai := 0.0
	if usedGenAI {
		genai = 1.0
	}

	return append(vector, genai)
}

// Match computes the cosine similarity of the user vector against every
// role profile. Reference Likert columns are scaled by the same factor; the
// genai flag column is left as is. A profile with an unexpected vector length
// is an error, never a silent zero-fill.
func (m *NumericMatcher) Match(likert map[string]int, usedGenAI bool, table *reference.NumericProfileTable) (Series, error) {
	user := UserVector(likert, usedGenAI)

	series := make(Series, table.Len())
	for _, profile := range table.Profiles {
		if len(profile.Features) != reference.FeatureCount {
			return nil, fmt.Errorf("profile for role %q has %d features, want %d",
				profile.Role, len(profile.Features), reference.FeatureCount)
		}

		scaled := make([]float64, len(profile.Features))
		for i, value := range profile.Features {
			if i < len(reference.LikertAxes) {
				scaled[i] = value / likertScale
			} else {
				scaled[i] = value
			}
		}

		similarity, err := Cosine(user, scaled)
		if err != nil {
			return nil, fmt.Errorf("scoring role %q: %w", profile.Role, err)
		}

		series[profile.Role] = similarity
	}

	m.logger.Debug("numeric matching completed", zap.Int("roles", len(series)))

	return series, nil
}
