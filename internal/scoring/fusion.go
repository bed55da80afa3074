package scoring

import "sort"

// Fusion weights. They must sum to 1.0.
const (
	SemanticWeight = 0.6
	NumericWeight  = 0.4
)

// RankedRole is one entry of the fused recommendation list.
type RankedRole struct {
	Role     string
	Score    float64
	Semantic float64
	Numeric  float64
}

// Fuse merges the two score series over the union of role keys, defaulting a
// role missing from either series to 0. The result is sorted by fused score
// descending; ties break alphabetically by role name so the ranking is
// deterministic.
func Fuse(semantic, numeric Series) []RankedRole {
	roles := make(map[string]bool, len(semantic)+len(numeric))
	for role := range semantic {
		roles[role] = true
	}
	for role := range numeric {
		roles[role] = true
	}

	ranked := make([]RankedRole, 0, len(roles))
	for role := range roles {
		s := semantic[role]
		n := numeric[role]
		ranked = append(ranked, RankedRole{
			Role:     role,
			Score:    SemanticWeight*s + NumericWeight*n,
			Semantic: s,
			Numeric:  n,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Role < ranked[j].Role
	})

	return ranked
}
