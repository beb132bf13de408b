package exporter

import (
	"strings"

	"microreport/pkg/contracts/domain"
)

// AssociatedSeparator joins associated microorganism names in one cell
const AssociatedSeparator = "; "

// Column headers in output order
var (
	MicroorganismHeaders = []string{
		"Sample",
		"Name",
		"Class",
		"Aligned Read Count",
		"ANI",
		"RPKM",
		"Predicted Present",
		"Relative Abundance (%)",
		"Phenotypic Group",
		"Presence",
	}

	AMRMarkerHeaders = []string{
		"Sample",
		"Gene Name",
		"Coverage",
		"Median Depth",
		"Associated Microorganisms",
		"Class",
		"Gene Family",
		"Predicted Present",
	}
)

// microorganismRow returns the cell values of r in header order
func microorganismRow(r domain.MicroorganismRecord) []any {
	return []any{
		r.Sample,
		r.Name,
		r.Class,
		r.AlignedReadCount,
		r.ANI,
		r.RPKM,
		r.PredictedPresent,
		r.RelativeAbundance,
		r.PhenotypicGroup,
		r.Presence(),
	}
}

// amrMarkerRow returns the cell values of r in header order
func amrMarkerRow(r domain.AMRMarkerRecord) []any {
	return []any{
		r.Sample,
		r.GeneName,
		r.Coverage,
		r.MedianDepth,
		joinNames(r.AssociatedMicroorganisms),
		r.Class,
		r.GeneFamily,
		r.PredictedPresent,
	}
}

// joinNames joins names with AssociatedSeparator, skipping blanks
func joinNames(names []string) string {
	kept := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			kept = append(kept, n)
		}
	}
	return strings.Join(kept, AssociatedSeparator)
}
