package domain

// Sample is one sample folder matched by the naming convention.
// It is created during discovery and read-only afterwards.
type Sample struct {
	ID         string `json:"id" validate:"required"`
	Name       string `json:"name" validate:"required"`
	Dir        string `json:"dir" validate:"required,dir"`
	ReportPath string `json:"report_path" validate:"required"`
}

// SampleName returns the label used for a sample identifier in tables,
// charts and diagnostics, e.g. "sample7".
func SampleName(id string) string {
	return "sample" + id
}
