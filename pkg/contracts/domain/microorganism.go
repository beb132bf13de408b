package domain

// PresenceReadThreshold is the aligned read count above which an organism
// counts as present even when the report does not predict it.
const PresenceReadThreshold = 5

// MicroorganismRecord is one organism entry of a sample report.
type MicroorganismRecord struct {
	Sample            string  `json:"sample"`
	Name              string  `json:"name"`
	Class             string  `json:"class"`
	AlignedReadCount  int64   `json:"aligned_read_count"`
	ANI               float64 `json:"ani"`
	RPKM              float64 `json:"rpkm"`
	PredictedPresent  bool    `json:"predicted_present"`
	RelativeAbundance float64 `json:"relative_abundance"` // percent among present taxa of the sample
	PhenotypicGroup   string  `json:"phenotypic_group,omitempty"`
}

// Presence reports the looser presence heuristic: predicted present, or
// more aligned reads than PresenceReadThreshold.
func (r MicroorganismRecord) Presence() bool {
	return r.PredictedPresent || r.AlignedReadCount > PresenceReadThreshold
}
