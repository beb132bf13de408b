package charts

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"microreport/pkg/contracts/domain"
)

func rec(sample, name, class string, present bool, abundance float64) domain.MicroorganismRecord {
	return domain.MicroorganismRecord{
		Sample:            sample,
		Name:              name,
		Class:             class,
		PredictedPresent:  present,
		RelativeAbundance: abundance,
	}
}

func fixtureRecords() []domain.MicroorganismRecord {
	return []domain.MicroorganismRecord{
		rec("sample1", "b-taxon", "Bacteria", true, 25),
		rec("sample1", "a-taxon", "Bacteria", true, 25),
		rec("sample1", "c-taxon", "Bacteria", true, 50),
		rec("sample1", "fungus", "Fungi", false, 0),
		rec("sample2", "virus", "Viruses", false, 0),
		rec("sample3", "zero", "", true, 0),
	}
}

func TestPresenceCounts(t *testing.T) {
	notPresent, present := PresenceCounts(fixtureRecords())
	assert.Equal(t, 2, notPresent)
	assert.Equal(t, 4, present)

	notPresent, present = PresenceCounts(nil)
	assert.Zero(t, notPresent)
	assert.Zero(t, present)
}

func TestClassCounts(t *testing.T) {
	bars := ClassCounts(fixtureRecords())
	assert.Equal(t, []Bar{
		{Label: "Bacteria", Value: 3},
		{Label: "Fungi", Value: 1},
		{Label: UnclassifiedLabel, Value: 1},
		{Label: "Viruses", Value: 1},
	}, bars)

	assert.Empty(t, ClassCounts(nil))
}

func TestAbundanceSeries(t *testing.T) {
	bars := AbundanceSeries(fixtureRecords(), "sample1")
	assert.Equal(t, []Bar{
		{Label: "c-taxon", Value: 50},
		{Label: "a-taxon", Value: 25},
		{Label: "b-taxon", Value: 25},
	}, bars)

	assert.Empty(t, AbundanceSeries(fixtureRecords(), "sample2"))
}

func TestHasAbundance(t *testing.T) {
	assert.True(t, hasAbundance(AbundanceSeries(fixtureRecords(), "sample1")))
	assert.False(t, hasAbundance(AbundanceSeries(fixtureRecords(), "sample3")), "present taxa with zero abundance")
	assert.False(t, hasAbundance(nil))
}
