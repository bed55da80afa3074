package reference

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LikertAxes is the fixed order of self-rating axes in every feature vector.
// The numeric profile table must expose exactly these columns plus GenAIAxis.
var LikertAxes = []string{"python", "sql", "scala", "ml", "dl", "stats", "mlops", "data_engineering"}

// GenAIAxis is the binary generative-AI-usage flag column.
const GenAIAxis = "genai"

// FeatureCount is the length of every feature vector: the Likert axes plus
// the genai flag.
var FeatureCount = len(LikertAxes) + 1

// SchemaMismatchError reports axis columns missing from the numeric profile
// table. A mismatch aborts the numeric scoring path; axes are never
// silently zero-filled.
type SchemaMismatchError struct {
	Missing []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("numeric profile table is missing columns: %s", strings.Join(e.Missing, ", "))
}

// NumericProfile is one role's raw reference feature vector, ordered as
// LikertAxes followed by the genai flag. Likert values are kept on the 1-5
// scale; scaling happens in the matcher.
type NumericProfile struct {
	Role     string
	Features []float64
}

// NumericProfileTable holds one profile per role.
type NumericProfileTable struct {
	Profiles []NumericProfile
}

// LoadNumericProfiles reads the numeric profile CSV. The file must have a
// `role` column plus every axis column; missing axes produce a
// SchemaMismatchError naming them.
func LoadNumericProfiles(path string) (*NumericProfileTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening numeric profile table: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing numeric profile table %q: %w", path, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("numeric profile table %q is empty", path)
	}

	columns := make(map[string]int)
	for i, column := range records[0] {
		columns[strings.ToLower(strings.TrimSpace(column))] = i
	}

	roleIdx, ok := columns["role"]
	if !ok {
		return nil, fmt.Errorf("numeric profile table %q must have a role column", path)
	}

	axes := append(append([]string{}, LikertAxes...), GenAIAxis)
	missing := make([]string, 0)
	for _, axis := range axes {
		if _, ok := columns[axis]; !ok {
			missing = append(missing, axis)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaMismatchError{Missing: missing}
	}

	table := &NumericProfileTable{}
	for line, record := range records[1:] {
		role := ""
		if roleIdx < len(record) {
			role = strings.TrimSpace(record[roleIdx])
		}
		if role == "" {
			continue
		}

		features := make([]float64, 0, FeatureCount)
		for _, axis := range axes {
			idx := columns[axis]
			if idx >= len(record) {
				return nil, fmt.Errorf("numeric profile table %q: row %d is short", path, line+2)
			}

			value, err := strconv.ParseFloat(strings.TrimSpace(record[idx]), 64)
			if err != nil {
				return nil, fmt.Errorf("numeric profile table %q: row %d column %s: %w", path, line+2, axis, err)
			}
			features = append(features, value)
		}

		table.Profiles = append(table.Profiles, NumericProfile{Role: role, Features: features})
	}

	if len(table.Profiles) == 0 {
		return nil, fmt.Errorf("numeric profile table %q has no usable rows", path)
	}

	return table, nil
}

func (t *NumericProfileTable) Len() int {
	return len(t.Profiles)
}
