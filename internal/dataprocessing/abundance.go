package dataprocessing

import (
	"microreport/pkg/contracts/domain"
)

// ApplyRelativeAbundance sets the relative abundance of the records of one
// sample. The metric is the aligned read count: each predicted-present
// record gets its share of the reads of all predicted-present records, in
// percent. Records not predicted present, and every record when the present
// reads sum to zero, get 0.
func ApplyRelativeAbundance(records []domain.MicroorganismRecord) {
	var total int64
	for _, r := range records {
		if r.PredictedPresent {
			total += r.AlignedReadCount
		}
	}

	for i := range records {
		if !records[i].PredictedPresent || total == 0 {
			records[i].RelativeAbundance = 0
			continue
		}
		records[i].RelativeAbundance = float64(records[i].AlignedReadCount) / float64(total) * 100
	}
}
