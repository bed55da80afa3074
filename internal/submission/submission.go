// Package submission models one questionnaire submission: the self-reported
// Likert ratings, free-text project descriptions and technical flags the
// scoring pipeline consumes.
package submission

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// ErrEmptyProfile means no free-text answer carries any usable signal. It is
// a user-facing validation outcome that blocks scoring, not a processing
// failure.
var ErrEmptyProfile = errors.New("no usable free-text answers in submission")

const (
	likertMin = 1
	likertMax = 5
)

// TechnicalFlags carries the declarative technology answers.
type TechnicalFlags struct {
	Languages  []string `json:"languages,omitempty" mapstructure:"languages"`
	Frameworks []string `json:"frameworks,omitempty" mapstructure:"frameworks"`
	UsedGenAI  bool     `json:"used_genai" mapstructure:"used_genai"`
}

// Submission is one raw form submission. It is immutable after load; derived
// data produced during scoring lives in the assessment result.
type Submission struct {
	Timestamp   time.Time      `json:"timestamp" mapstructure:"timestamp"`
	Likert      map[string]int `json:"likert" mapstructure:"likert"`
	FreeText    []string       `json:"free_text" mapstructure:"free_text"`
	Technical   TechnicalFlags `json:"technical" mapstructure:"technical"`
	TargetRoles []string       `json:"target_roles,omitempty" mapstructure:"target_roles"`
}

// Load reads a submission JSON file. The payload is decoded through
// mapstructure so partially-filled forms and unknown keys are tolerated. A
// missing timestamp is set to the load time.
func Load(path string) (*Submission, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading submission file: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing submission file %q: %w", path, err)
	}

	var sub Submission
	cfg := &mapstructure.DecoderConfig{
		Result:     &sub,
		DecodeHook: mapstructure.StringToTimeHookFunc(time.RFC3339),
	}

	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decoding submission: %w", err)
	}

	if sub.Timestamp.IsZero() {
		sub.Timestamp = time.Now().UTC()
	}

	return &sub, nil
}

// Validate rejects submissions the pipeline cannot score: no usable free
// text, or Likert values outside the 1-5 scale.
func (s *Submission) Validate() error {
	for axis, value := range s.Likert {
		if value < likertMin || value > likertMax {
			return fmt.Errorf("likert rating for %q is %d, must be between %d and %d",
				axis, value, likertMin, likertMax)
		}
	}

	for _, answer := range s.FreeText {
		if strings.TrimSpace(answer) != "" {
			return nil
		}
	}

	return ErrEmptyProfile
}

// ProfileText assembles the free-text profile matched semantically: the
// answers in form order plus one line listing the declared technologies.
func (s *Submission) ProfileText(answers []string) string {
	parts := make([]string, 0, len(answers)+1)
	for _, answer := range answers {
		if trimmed := strings.TrimSpace(answer); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}

	technologies := append(append([]string{}, s.Technical.Languages...), s.Technical.Frameworks...)
	if len(technologies) > 0 {
		parts = append(parts, "Technologies: "+strings.Join(technologies, ", "))
	}

	return strings.Join(parts, "\n")
}

// SaveRecord writes the raw submission as an audit record under dir and
// returns the file path. The record is not consumed by scoring.
func (s *Submission) SaveRecord(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("response-%d.json", s.Timestamp.Unix()))

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return "", err
	}

	return path, nil
}
