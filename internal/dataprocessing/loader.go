package dataprocessing

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/valyala/fastjson"
	"golang.org/x/crypto/blake2b"

	apperrors "microreport/internal/errors"
	"microreport/internal/infrastructure"
	"microreport/pkg/contracts/domain"
)

// Report is the parsed content of one sample report
type Report struct {
	Sample domain.Sample
	Root   Node
	// Size is the number of bytes read
	Size int64
	// Checksum is the hex BLAKE2b-256 digest of the file content
	Checksum string
}

// Loader reads and parses sample reports
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a new report loader
func NewLoader(logger *slog.Logger) *Loader {
	return &Loader{logger: infrastructure.WithComponent(logger, "loader")}
}

// Load reads the report of sample and parses it. The file is read in one
// call and closed before parsing. Every failure is returned as a load
// ProcessingError wrapping one of the report sentinel errors.
func (l *Loader) Load(ctx context.Context, sample domain.Sample) (*Report, error) {
	data, err := os.ReadFile(sample.ReportPath)
	if err != nil {
		cause := apperrors.ErrReportUnreadable
		message := "failed to read report"
		if errors.Is(err, fs.ErrNotExist) {
			cause = apperrors.ErrReportNotFound
			message = "report file not found"
		}
		return nil, l.fail(message, errors.Join(cause, err), sample)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, l.fail("report file is empty", apperrors.ErrEmptyReport, sample)
	}

	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, l.fail("failed to parse report", errors.Join(apperrors.ErrMalformedReport, err), sample)
	}

	root := NewNode(v)
	if !root.IsObject() {
		return nil, l.fail("report top level is "+root.Kind()+", expected object", apperrors.ErrInvalidShape, sample)
	}

	sum := blake2b.Sum256(data)

	l.logger.DebugContext(ctx, "Report loaded",
		slog.String("sample", sample.Name),
		slog.String("path", sample.ReportPath),
		slog.Int("size_bytes", len(data)))

	return &Report{
		Sample:   sample,
		Root:     root,
		Size:     int64(len(data)),
		Checksum: hex.EncodeToString(sum[:]),
	}, nil
}

func (l *Loader) fail(message string, cause error, sample domain.Sample) error {
	return apperrors.NewLoadError(message, cause).
		WithSample(sample.Name).
		WithPath(sample.ReportPath)
}
