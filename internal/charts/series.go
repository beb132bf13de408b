package charts

import (
	"sort"

	"microreport/pkg/contracts/domain"
)

// UnclassifiedLabel is shown for records without a class
const UnclassifiedLabel = "Unclassified"

// Bar is one labelled bar of a chart
type Bar struct {
	Label string
	Value float64
}

// PresenceCounts counts records by predicted presence across all samples
func PresenceCounts(records []domain.MicroorganismRecord) (notPresent, present int) {
	for _, r := range records {
		if r.PredictedPresent {
			present++
		} else {
			notPresent++
		}
	}
	return notPresent, present
}

// ClassCounts returns one bar per distinct class, sorted by class name
func ClassCounts(records []domain.MicroorganismRecord) []Bar {
	counts := make(map[string]int)
	for _, r := range records {
		label := r.Class
		if label == "" {
			label = UnclassifiedLabel
		}
		counts[label]++
	}

	bars := make([]Bar, 0, len(counts))
	for label, n := range counts {
		bars = append(bars, Bar{Label: label, Value: float64(n)})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Label < bars[j].Label })
	return bars
}

// AbundanceSeries returns the predicted-present taxa of sample with their
// relative abundance, highest first and ties by name.
func AbundanceSeries(records []domain.MicroorganismRecord, sample string) []Bar {
	var bars []Bar
	for _, r := range records {
		if r.Sample != sample || !r.PredictedPresent {
			continue
		}
		bars = append(bars, Bar{Label: r.Name, Value: r.RelativeAbundance})
	}
	sort.SliceStable(bars, func(i, j int) bool {
		if bars[i].Value != bars[j].Value {
			return bars[i].Value > bars[j].Value
		}
		return bars[i].Label < bars[j].Label
	})
	return bars
}

// hasAbundance reports whether any bar has a non-zero value
func hasAbundance(bars []Bar) bool {
	for _, b := range bars {
		if b.Value > 0 {
			return true
		}
	}
	return false
}
