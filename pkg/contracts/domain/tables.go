package domain

// SampleRecords holds everything extracted from a single report.
type SampleRecords struct {
	Sample         Sample
	Microorganisms []MicroorganismRecord
	AMRMarkers     []AMRMarkerRecord
}

// Tables are the two run-wide aggregated datasets. Rows keep sample
// processing order, then in-report order.
type Tables struct {
	Microorganisms []MicroorganismRecord `json:"microorganisms"`
	AMRMarkers     []AMRMarkerRecord     `json:"amr_markers"`
}

// SampleNames returns the distinct sample names of the microorganism table
// in first-seen order.
func (t *Tables) SampleNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range t.Microorganisms {
		if !seen[r.Sample] {
			seen[r.Sample] = true
			names = append(names, r.Sample)
		}
	}
	return names
}
