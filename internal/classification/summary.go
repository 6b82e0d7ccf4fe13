package classification

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/montanaflynn/stats"
)

// CategorySummary aggregates the records sharing one primary domain.
type CategorySummary struct {
	Name             string  `json:"name"`
	Count            int     `json:"count"`
	MeanConfidence   float64 `json:"mean_confidence"`
	MedianConfidence float64 `json:"median_confidence"`
}

// Summarize groups records by primary domain. Summaries are ordered by
// count, largest first, then by name.
func Summarize(records []Record) ([]CategorySummary, error) {
	scores := make(map[string][]float64)
	for _, rec := range records {
		name := rec.Classification.PrimaryDomain
		scores[name] = append(scores[name], rec.Classification.ConfidenceScore)
	}

	summaries := make([]CategorySummary, 0, len(scores))
	for name, values := range scores {
		data := stats.Float64Data(values)

		mean, err := stats.Mean(data)
		if err != nil {
			return nil, fmt.Errorf("mean confidence for %q: %w", name, err)
		}

		median, err := stats.Median(data)
		if err != nil {
			return nil, fmt.Errorf("median confidence for %q: %w", name, err)
		}

		summaries = append(summaries, CategorySummary{
			Name:             name,
			Count:            len(values),
			MeanConfidence:   mean,
			MedianConfidence: median,
		})
	}

	slices.SortFunc(summaries, func(a, b CategorySummary) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	return summaries, nil
}
