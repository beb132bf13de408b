package dataprocessing

import (
	"microreport/pkg/contracts/domain"
)

// AggregationStats counts what was appended to the tables
type AggregationStats struct {
	Samples        int
	Microorganisms int
	AMRMarkers     int
}

// Aggregator appends per-sample records to the two run-wide tables in the
// order samples are added.
type Aggregator struct {
	tables  domain.Tables
	samples int
}

// NewAggregator creates an aggregator with empty tables
func NewAggregator() *Aggregator {
	return &Aggregator{
		tables: domain.Tables{
			Microorganisms: []domain.MicroorganismRecord{},
			AMRMarkers:     []domain.AMRMarkerRecord{},
		},
	}
}

// Add appends the records of one sample
func (a *Aggregator) Add(records domain.SampleRecords) {
	a.samples++
	a.tables.Microorganisms = append(a.tables.Microorganisms, records.Microorganisms...)
	a.tables.AMRMarkers = append(a.tables.AMRMarkers, records.AMRMarkers...)
}

// Tables returns the aggregated tables
func (a *Aggregator) Tables() domain.Tables {
	return a.tables
}

// Stats returns counts of the aggregated data
func (a *Aggregator) Stats() AggregationStats {
	return AggregationStats{
		Samples:        a.samples,
		Microorganisms: len(a.tables.Microorganisms),
		AMRMarkers:     len(a.tables.AMRMarkers),
	}
}
