package mitigation

import "sort"

// Rank orders results for presentation: risk reduction descending, then
// paths eliminated descending, then implementation complexity ascending
// (prefer lower effort among otherwise equal candidates). The sort is
// stable, so equal-key results keep their deterministic input order and
// the full output is reproducible.
func Rank(results []*Result) []*Result {
	ranked := make([]*Result, len(results))
	copy(ranked, results)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.RiskReduction != b.RiskReduction {
			return a.RiskReduction > b.RiskReduction
		}
		if a.PathsEliminated != b.PathsEliminated {
			return a.PathsEliminated > b.PathsEliminated
		}
		return complexityOrdinal[a.ImplementationComplexity] < complexityOrdinal[b.ImplementationComplexity]
	})

	return ranked
}
