package dataprocessing

import (
	"context"
	"log/slog"
	"math"
	"strings"

	apperrors "microreport/internal/errors"
	"microreport/internal/infrastructure"
	"microreport/pkg/contracts/domain"
)

// Report field paths
var (
	MicroorganismsPath   = []string{"targetReport", "microorganisms"}
	AMRMarkersPath       = []string{"targetReport", "amrMarkers"}
	PredictedPresentPath = []string{"explifyInterpretation", "predictedPresent"}
	AssociatedPath       = []string{"associatedMicroorganisms", "all"}
)

// Extractor turns parsed reports into table records. Problems found while
// reading entries are recorded in the collector; extraction itself never
// fails.
type Extractor struct {
	collector *apperrors.Collector
	logger    *slog.Logger
}

// NewExtractor creates a new record extractor
func NewExtractor(collector *apperrors.Collector, logger *slog.Logger) *Extractor {
	return &Extractor{
		collector: collector,
		logger:    infrastructure.WithComponent(logger, "extractor"),
	}
}

// Extract produces both record sets of one report. Relative abundance is
// computed on the microorganism records before they are returned.
func (e *Extractor) Extract(ctx context.Context, report *Report) domain.SampleRecords {
	mo := e.Microorganisms(ctx, report)
	ApplyRelativeAbundance(mo)
	amr := e.AMRMarkers(ctx, report)

	e.logger.DebugContext(ctx, "Records extracted",
		slog.String("sample", report.Sample.Name),
		slog.Int("microorganisms", len(mo)),
		slog.Int("amr_markers", len(amr)))

	return domain.SampleRecords{
		Sample:         report.Sample,
		Microorganisms: mo,
		AMRMarkers:     amr,
	}
}

// Microorganisms reads the organism entries of a report
func (e *Extractor) Microorganisms(ctx context.Context, report *Report) []domain.MicroorganismRecord {
	entries := e.section(ctx, report, MicroorganismsPath, "microorganism")
	records := make([]domain.MicroorganismRecord, 0, len(entries))

	for i, entry := range entries {
		f := fieldReader{e: e, ctx: ctx, report: report, index: i, entry: entry}
		if !f.isObject() {
			continue
		}

		reads := f.integer("alignedReadCount")
		if reads < 0 {
			f.record(slog.LevelWarn, "negative read count treated as zero", apperrors.ErrInvalidShape, "alignedReadCount")
			reads = 0
		}

		records = append(records, domain.MicroorganismRecord{
			Sample:           report.Sample.Name,
			Name:             f.requiredString("name"),
			Class:            f.requiredString("class"),
			AlignedReadCount: reads,
			ANI:              Round2(f.number("ani")),
			RPKM:             Round2(f.number("rpkm")),
			PredictedPresent: f.requiredBool(PredictedPresentPath...),
			PhenotypicGroup:  f.optionalString("phenotypicGroup"),
		})
	}

	return records
}

// AMRMarkers reads the antimicrobial-resistance marker entries of a report
func (e *Extractor) AMRMarkers(ctx context.Context, report *Report) []domain.AMRMarkerRecord {
	entries := e.section(ctx, report, AMRMarkersPath, "AMR marker")
	records := make([]domain.AMRMarkerRecord, 0, len(entries))

	for i, entry := range entries {
		f := fieldReader{e: e, ctx: ctx, report: report, index: i, entry: entry}
		if !f.isObject() {
			continue
		}

		predicted, _ := f.optionalBool(PredictedPresentPath...)

		records = append(records, domain.AMRMarkerRecord{
			Sample:                   report.Sample.Name,
			GeneName:                 f.requiredString("name"),
			Coverage:                 Round2(f.number("coverage")),
			MedianDepth:              f.number("medianDepth"),
			AssociatedMicroorganisms: f.stringList(AssociatedPath...),
			Class:                    f.optionalString("class"),
			GeneFamily:               f.optionalString("geneFamily"),
			PredictedPresent:         predicted,
		})
	}

	return records
}

// section returns the entries of the array at path. An absent array is a
// warning; anything other than an array is an error. Both yield no entries.
func (e *Extractor) section(ctx context.Context, report *Report, path []string, label string) []Node {
	field := strings.Join(path, ".")
	node := report.Root.Get(path...)

	if !node.Exists() {
		e.collector.Warn(ctx, apperrors.NewExtractionError("no "+label+" data found", apperrors.ErrMissingSection).
			WithSample(report.Sample.Name).
			WithPath(report.Sample.ReportPath).
			WithField(field))
		return nil
	}

	entries, ok := node.Array()
	if !ok {
		e.collector.Error(ctx, apperrors.NewExtractionError(label+" section is "+node.Kind()+", expected array", apperrors.ErrInvalidShape).
			WithSample(report.Sample.Name).
			WithPath(report.Sample.ReportPath).
			WithField(field))
		return nil
	}

	return entries
}

// fieldReader reads the fields of one entry and records problems with the
// entry index attached.
type fieldReader struct {
	e      *Extractor
	ctx    context.Context
	report *Report
	index  int
	entry  Node
}

func (f fieldReader) record(level slog.Level, message string, cause error, field string) {
	err := apperrors.NewExtractionError(message, cause).
		WithSample(f.report.Sample.Name).
		WithPath(f.report.Sample.ReportPath).
		WithEntry(f.index)
	if field != "" {
		err = err.WithField(field)
	}
	f.e.collector.Add(f.ctx, level, err)
}

func (f fieldReader) isObject() bool {
	if f.entry.IsObject() {
		return true
	}
	f.record(slog.LevelError, "entry is "+f.entry.Kind()+", expected object; skipped", apperrors.ErrInvalidShape, "")
	return false
}

// present returns the node at path, its dotted field name and whether it holds a value
func (f fieldReader) present(path []string) (Node, string, bool) {
	node := f.entry.Get(path...)
	return node, strings.Join(path, "."), node.Exists()
}

func (f fieldReader) wrongType(field, want string, node Node) {
	f.record(slog.LevelWarn, "field "+field+" is "+node.Kind()+", expected "+want, apperrors.ErrInvalidShape, field)
}

func (f fieldReader) requiredString(path ...string) string {
	node, field, ok := f.present(path)
	if !ok {
		f.record(slog.LevelWarn, "required field "+field+" missing", apperrors.ErrMissingField, field)
		return ""
	}
	s, ok := node.StringValue()
	if !ok {
		f.wrongType(field, "string", node)
	}
	return s
}

func (f fieldReader) optionalString(path ...string) string {
	node, field, ok := f.present(path)
	if !ok {
		return ""
	}
	s, ok := node.StringValue()
	if !ok {
		f.wrongType(field, "string", node)
	}
	return s
}

func (f fieldReader) requiredBool(path ...string) bool {
	_, field, ok := f.present(path)
	if !ok {
		f.record(slog.LevelWarn, "required field "+field+" missing", apperrors.ErrMissingField, field)
		return false
	}
	b, _ := f.optionalBool(path...)
	return b
}

func (f fieldReader) optionalBool(path ...string) (bool, bool) {
	node, field, ok := f.present(path)
	if !ok {
		return false, false
	}
	b, ok := node.BoolValue()
	if !ok {
		f.wrongType(field, "boolean", node)
	}
	return b, ok
}

func (f fieldReader) number(path ...string) float64 {
	node, field, ok := f.present(path)
	if !ok {
		return 0
	}
	v, ok := node.FloatValue()
	if !ok {
		f.wrongType(field, "number", node)
	}
	return v
}

func (f fieldReader) integer(path ...string) int64 {
	node, field, ok := f.present(path)
	if !ok {
		return 0
	}
	v, ok := node.IntValue()
	if !ok {
		f.wrongType(field, "number", node)
	}
	return v
}

// stringList returns the string elements of the array at path. An absent
// array yields an empty, non-nil list.
func (f fieldReader) stringList(path ...string) []string {
	out := []string{}
	node, field, ok := f.present(path)
	if !ok {
		return out
	}
	items, ok := node.Array()
	if !ok {
		f.wrongType(field, "array", node)
		return out
	}
	for _, item := range items {
		s, ok := item.StringValue()
		if !ok {
			f.wrongType(field, "array of strings", item)
			continue
		}
		out = append(out, s)
	}
	return out
}

// Round2 rounds v to two decimal places, halves away from zero
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
