package domain

// AMRMarkerRecord is one antimicrobial-resistance marker entry of a sample report.
type AMRMarkerRecord struct {
	Sample                   string   `json:"sample"`
	GeneName                 string   `json:"gene_name"`
	Coverage                 float64  `json:"coverage"`
	MedianDepth              float64  `json:"median_depth"`
	AssociatedMicroorganisms []string `json:"associated_microorganisms"`
	Class                    string   `json:"class,omitempty"`
	GeneFamily               string   `json:"gene_family,omitempty"`
	PredictedPresent         bool     `json:"predicted_present"`
}
