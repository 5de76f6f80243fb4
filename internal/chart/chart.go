package chart

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/eunbi/vaxsight/internal/dataset"
	"github.com/eunbi/vaxsight/pkg/logger"
)

var (
	// ErrEmptyData is returned when there is nothing to plot.
	ErrEmptyData = errors.New("no data to plot")

	// ErrUnknownMetric is returned when the requested bar-chart metric is
	// not one of the summary statistics.
	ErrUnknownMetric = errors.New("unknown summary metric")
)

// Metrics accepted by GroupedBars.
const (
	MetricMean  = "mean"
	MetricMax   = "max"
	MetricMin   = "min"
	MetricCount = "count"
)

var (
	trendColor = color.RGBA{R: 0x2E, G: 0x86, B: 0xAB, A: 0xFF}
	barColor   = color.RGBA{R: 0xA2, G: 0x3B, B: 0x72, A: 0xFF}
)

// Renderer draws chart images from already-aggregated data. A failed
// render leaves no partial artifact behind: images are written to a temp
// file and renamed into place on success.
type Renderer struct {
	log *logger.Logger
}

// New creates a Renderer.
func New(log *logger.Logger) *Renderer {
	return &Renderer{log: log}
}

// Trend renders the yearly coverage series for one country as a line
// chart PNG at path.
func (r *Renderer) Trend(points []dataset.TrendPoint, country, path string) error {
	if len(points) == 0 {
		return fmt.Errorf("%w: trend for %s", ErrEmptyData, country)
	}

	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i].X = float64(pt.Year)
		xys[i].Y = pt.Coverage
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s MCV2 Vaccination Coverage Annual Trend (%d-%d)",
		country, points[0].Year, points[len(points)-1].Year)
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "MCV2 Coverage Rate (%)"
	p.Add(plotter.NewGrid())

	line, scatter, err := plotter.NewLinePoints(xys)
	if err != nil {
		return fmt.Errorf("build trend series: %w", err)
	}
	line.Color = trendColor
	line.Width = vg.Points(2)
	scatter.GlyphStyle.Color = trendColor
	scatter.GlyphStyle.Radius = vg.Points(3)

	p.Add(line, scatter)
	p.Legend.Add(fmt.Sprintf("%s MCV2 Coverage Rate (%%)", country), line)

	if err := r.save(p, 10*vg.Inch, 6*vg.Inch, path); err != nil {
		return err
	}

	r.log.Infof("trend chart written to %s (country code %s)", path, country)
	return nil
}

// GroupedBars renders the top topN groups of a summary, sorted descending
// by metric, as a bar chart PNG at path.
func (r *Renderer) GroupedBars(s dataset.Summary, metric string, topN int, path string) error {
	if len(s.Rows) == 0 {
		return fmt.Errorf("%w: grouped summary", ErrEmptyData)
	}

	pick, err := metricValue(metric)
	if err != nil {
		return err
	}

	rows := make([]dataset.SummaryRow, len(s.Rows))
	copy(rows, s.Rows)
	sort.SliceStable(rows, func(i, j int) bool { return pick(rows[i]) > pick(rows[j]) })
	if topN > 0 && len(rows) > topN {
		rows = rows[:topN]
	}

	values := make(plotter.Values, len(rows))
	labels := make([]string, len(rows))
	labelXYs := make(plotter.XYs, len(rows))
	labelTexts := make([]string, len(rows))
	for i, row := range rows {
		v := pick(row)
		values[i] = v
		labels[i] = row.Group
		labelXYs[i] = plotter.XY{X: float64(i), Y: v + 0.5}
		labelTexts[i] = fmt.Sprintf("%.1f", v)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("MCV2 Coverage %s - Top %d (by %s)", metric, len(rows), s.Key)
	p.Y.Label.Text = metricLabel(metric)
	p.Add(plotter.NewGrid())

	bars, err := plotter.NewBarChart(values, vg.Points(25))
	if err != nil {
		return fmt.Errorf("build bar chart: %w", err)
	}
	bars.Color = barColor
	bars.LineStyle.Width = vg.Points(0.5)
	bars.LineStyle.Color = color.White
	p.Add(bars)
	p.NominalX(labels...)

	valueLabels, err := plotter.NewLabels(plotter.XYLabels{XYs: labelXYs, Labels: labelTexts})
	if err != nil {
		return fmt.Errorf("build bar labels: %w", err)
	}
	p.Add(valueLabels)

	if err := r.save(p, 12*vg.Inch, 7*vg.Inch, path); err != nil {
		return err
	}

	r.log.Infof("grouped comparison chart written to %s (metric %s)", path, metric)
	return nil
}

// save writes the plot to a temp PNG next to path and renames it into
// place so a failed render cannot leave a truncated image.
func (r *Renderer) save(p *plot.Plot, w, h vg.Length, path string) error {
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("chart directory does not exist: %s", dir)
	}

	tmp := filepath.Join(dir, "."+filepath.Base(path)+".tmp.png")
	defer os.Remove(tmp)

	if err := p.Save(w, h, tmp); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("finalize chart: %w", err)
	}
	return nil
}

func metricValue(metric string) (func(dataset.SummaryRow) float64, error) {
	switch metric {
	case MetricMean:
		return func(r dataset.SummaryRow) float64 { return r.Mean }, nil
	case MetricMax:
		return func(r dataset.SummaryRow) float64 { return r.Max }, nil
	case MetricMin:
		return func(r dataset.SummaryRow) float64 { return r.Min }, nil
	case MetricCount:
		return func(r dataset.SummaryRow) float64 { return float64(r.Count) }, nil
	default:
		return nil, fmt.Errorf("%w: %q (want mean, max, min, or count)", ErrUnknownMetric, metric)
	}
}

func metricLabel(metric string) string {
	switch metric {
	case MetricMean:
		return "MCV2 Coverage Avg (%)"
	case MetricMax:
		return "MCV2 Coverage Max (%)"
	case MetricMin:
		return "MCV2 Coverage Min (%)"
	default:
		return "Record Count"
	}
}
