// Package reference loads the static role reference tables: the competency
// catalogue matched semantically and the per-role numeric profiles. Both are
// read once at startup and treated as read-only afterwards.
package reference

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/aisca/aisca/internal/ai"
)

// Competency is one reference row: a role and one competency expected of it.
// The embedding is computed once per table load and never mutated.
type Competency struct {
	Role      string
	Text      string
	Embedding []float32
}

// CompetencyTable holds all competency rows, many per role.
type CompetencyTable struct {
	Rows []Competency
}

// LoadCompetencies reads the competency CSV. The file must have `role` and
// `competency` columns; rows with either value missing are dropped before use.
func LoadCompetencies(path string) (*CompetencyTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening competency table: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing competency table %q: %w", path, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("competency table %q is empty", path)
	}

	roleIdx, textIdx := -1, -1
	for i, column := range records[0] {
		switch strings.ToLower(strings.TrimSpace(column)) {
		case "role":
			roleIdx = i
		case "competency":
			textIdx = i
		}
	}

	if roleIdx == -1 || textIdx == -1 {
		return nil, fmt.Errorf("competency table %q must have role and competency columns", path)
	}

	table := &CompetencyTable{}
	for _, record := range records[1:] {
		if roleIdx >= len(record) || textIdx >= len(record) {
			continue
		}

		role := strings.TrimSpace(record[roleIdx])
		text := strings.TrimSpace(record[textIdx])
		if role == "" || text == "" {
			continue
		}

		table.Rows = append(table.Rows, Competency{Role: role, Text: text})
	}

	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("competency table %q has no usable rows", path)
	}

	return table, nil
}

// ComputeEmbeddings fills every row's embedding with a single batch call.
func (t *CompetencyTable) ComputeEmbeddings(ctx context.Context, embedder ai.Embedder) error {
	texts := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		texts[i] = row.Text
	}

	vectors, err := embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding competency table: %w", err)
	}

	for i := range t.Rows {
		t.Rows[i].Embedding = vectors[i]
	}

	return nil
}

// Roles returns the distinct role names in alphabetical order.
func (t *CompetencyTable) Roles() []string {
	seen := make(map[string]bool)
	roles := make([]string, 0)
	for _, row := range t.Rows {
		if !seen[row.Role] {
			seen[row.Role] = true
			roles = append(roles, row.Role)
		}
	}
	sort.Strings(roles)
	return roles
}

// ForRole returns the rows belonging to the given role, in table order.
func (t *CompetencyTable) ForRole(role string) []Competency {
	rows := make([]Competency, 0)
	for _, row := range t.Rows {
		if row.Role == role {
			rows = append(rows, row)
		}
	}
	return rows
}

func (t *CompetencyTable) Len() int {
	return len(t.Rows)
}
