package dining

import "sort"

// MinRating is the lowest rating kept by Filter.
const MinRating = 4.0

var excludedCategories = map[string]bool{
	"Fast Food":   true,
	"Food Trucks": true,
	"Deli":        true,
	"Food Stands": true,
}

// Filter drops excluded categories and ratings below MinRating, orders the
// rest by review count (highest first, ties keep their input order) and
// truncates to topN when topN > 0. The input slice is not modified.
func Filter(recs []Recommendation, topN int) []Recommendation {
	out := make([]Recommendation, 0, len(recs))
	for _, r := range recs {
		if excluded(r.Categories) || r.Rating < MinRating {
			continue
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ReviewCount > out[j].ReviewCount
	})

	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

func excluded(categories []string) bool {
	for _, c := range categories {
		if excludedCategories[c] {
			return true
		}
	}
	return false
}
