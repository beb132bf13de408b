package charts

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"

	"microreport/internal/config"
	apperrors "microreport/internal/errors"
	"microreport/internal/infrastructure"
	"microreport/pkg/contracts/domain"
)

// ErrNoData is returned when a chart has nothing to show
var ErrNoData = errors.New("no data to plot")

var (
	colorRed       = color.RGBA{R: 255, A: 255}
	colorGreen     = color.RGBA{G: 128, A: 255}
	colorIndianRed = color.RGBA{R: 205, G: 92, B: 92, A: 255}
	classPalette   = []color.Color{
		color.RGBA{R: 255, G: 255, A: 255}, // yellow
		color.RGBA{G: 255, B: 255, A: 255}, // cyan
		color.RGBA{R: 255, B: 255, A: 255}, // magenta
	}
)

// Renderer draws the summary charts
type Renderer struct {
	width           vg.Length
	height          vg.Length
	abundanceHeight vg.Length
	logger          *slog.Logger
}

// NewRenderer creates a renderer with canvas sizes taken from cfg
func NewRenderer(cfg config.ChartsConfig, logger *slog.Logger) *Renderer {
	return &Renderer{
		width:           vg.Length(cfg.WidthCm) * vg.Centimeter,
		height:          vg.Length(cfg.HeightCm) * vg.Centimeter,
		abundanceHeight: vg.Length(cfg.AbundanceHeightCm) * vg.Centimeter,
		logger:          infrastructure.WithComponent(logger, "charts"),
	}
}

// RenderAll draws every chart for records into dir and returns the file
// names written. Empty tables skip the summary charts; failures are
// recorded in collector as render diagnostics and do not stop the others.
func (r *Renderer) RenderAll(ctx context.Context, dir string, records []domain.MicroorganismRecord, collector *apperrors.Collector) []string {
	var written []string

	render := func(name, sample string, draw func(path string) error) {
		path := filepath.Join(dir, name)
		err := draw(path)
		switch {
		case err == nil:
			written = append(written, name)
		case errors.Is(err, ErrNoData) && sample != "":
			r.logger.WarnContext(ctx, "Chart skipped, no present taxa",
				slog.String("chart", name),
				slog.String("sample", sample))
		case errors.Is(err, ErrNoData):
			r.logger.InfoContext(ctx, "Chart skipped, no data",
				slog.String("chart", name))
		default:
			collector.Error(ctx, apperrors.NewRenderError("failed to render chart "+name, err).
				WithSample(sample).
				WithPath(path))
		}
	}

	render(config.PresencePlotFile, "", func(path string) error {
		return r.RenderPresence(path, records)
	})
	render(config.ClassPlotFile, "", func(path string) error {
		return r.RenderClasses(path, records)
	})
	tables := domain.Tables{Microorganisms: records}
	for _, sample := range tables.SampleNames() {
		render(config.AbundancePlotFile(sample), sample, func(path string) error {
			return r.RenderAbundance(path, sample, records)
		})
	}

	r.logger.InfoContext(ctx, "Charts rendered", slog.Int("count", len(written)))
	return written
}

// RenderPresence draws the predicted-presence split
func (r *Renderer) RenderPresence(path string, records []domain.MicroorganismRecord) error {
	if len(records) == 0 {
		return ErrNoData
	}
	notPresent, present := PresenceCounts(records)

	p := newPlot("Predicted Presence of Microorganisms", "Quantity")
	bars := []Bar{
		{Label: "Not present", Value: float64(notPresent)},
		{Label: "Present", Value: float64(present)},
	}
	if err := addBars(p, bars, []color.Color{colorRed, colorGreen}); err != nil {
		return err
	}
	return r.save(p, r.width, r.height, path)
}

// RenderClasses draws the class distribution
func (r *Renderer) RenderClasses(path string, records []domain.MicroorganismRecord) error {
	bars := ClassCounts(records)
	if len(bars) == 0 {
		return ErrNoData
	}

	p := newPlot("Microorganisms Class", "Quantity")
	if err := addBars(p, bars, classPalette); err != nil {
		return err
	}
	return r.save(p, r.width, r.height, path)
}

// RenderAbundance draws the relative abundance of the present taxa of one sample
func (r *Renderer) RenderAbundance(path, sample string, records []domain.MicroorganismRecord) error {
	bars := AbundanceSeries(records, sample)
	if !hasAbundance(bars) {
		return ErrNoData
	}

	p := newPlot(
		fmt.Sprintf("Normalised Relative Abundance\nof Present Microorganisms\n%s", sample),
		"Normalised Relative Abundance (%)",
	)
	if err := addBars(p, bars, []color.Color{colorIndianRed}); err != nil {
		return err
	}
	p.X.Tick.Label.Rotation = 75 * math.Pi / 180
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter
	return r.save(p, r.width, r.abundanceHeight, path)
}

func newPlot(title, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.Text = yLabel
	p.Y.Min = 0
	return p
}

// addBars adds one single-value bar chart per bar so each can carry its own
// colour, cycling through colors.
func addBars(p *plot.Plot, bars []Bar, colors []color.Color) error {
	labels := make([]string, len(bars))
	for i, b := range bars {
		chart, err := plotter.NewBarChart(plotter.Values{b.Value}, vg.Points(28))
		if err != nil {
			return fmt.Errorf("failed to build bar %q: %w", b.Label, err)
		}
		chart.XMin = float64(i)
		chart.Color = colors[i%len(colors)]
		chart.LineStyle.Width = vg.Points(2)
		chart.LineStyle.Color = color.Black
		p.Add(chart)
		labels[i] = b.Label
	}
	p.NominalX(labels...)
	return nil
}

func (r *Renderer) save(p *plot.Plot, width, height vg.Length, path string) error {
	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("failed to save chart %s: %w", path, err)
	}
	r.logger.Debug("Chart saved", slog.String("file", path))
	return nil
}
