// Package charts renders the summary bar charts of the microorganism table
// as JPEG images.
//
// Three kinds of chart are produced: the predicted-presence split, the
// class distribution, and one relative abundance chart per sample that has
// present taxa with reads. Data preparation is kept in pure functions
// (PresenceCounts, ClassCounts, AbundanceSeries) so it can be tested
// without rendering.
package charts
