package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/KaramelBytes/surveyloom-cli/internal/chart"
	"github.com/KaramelBytes/surveyloom-cli/internal/utils"
)

// WriteCharts renders every chart of the report as a PNG under dir and records
// the file path on the chart. Charts with no drawable data are left without a
// file and noted on their page.
func (r *Report) WriteCharts(dir string) ([]string, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("create charts dir: %w", err)
	}
	var written []string
	for _, p := range r.Pages {
		for _, c := range p.Charts {
			var buf bytes.Buffer
			err := Render(&buf, c)
			if errors.Is(err, chart.ErrNoData) {
				p.Notes = append(p.Notes, fmt.Sprintf("no chart for %q: nothing to draw", c.Title))
				continue
			}
			if err != nil {
				return written, fmt.Errorf("%s: %w", c.Title, err)
			}
			path := filepath.Join(dir, p.Key+"-"+utils.Slug(c.Title)+".png")
			if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
				return written, err
			}
			c.File = path
			written = append(written, path)
		}
	}
	return written, nil
}

// Render draws one chart as PNG.
func Render(w io.Writer, c *Chart) error {
	switch c.Kind {
	case KindBar:
		return chart.Bars(w, c.Title, c.Bars)
	case KindHistogram:
		return chart.Histogram(w, c.Title, c.Bins)
	case KindScatter:
		return chart.Scatter(w, c.Title, c.XName, c.YName, c.X, c.Y, c.Line)
	case KindBox:
		return chart.BoxPlot(w, c.Title, c.YName, c.Series)
	case KindHeatmap:
		return chart.Heatmap(w, c.Title, c.Corr)
	case KindPie:
		return chart.Pie(w, c.Title, c.Bars)
	case KindGrouped:
		return chart.GroupedBars(w, c.Title, c.XName, c.Cross)
	default:
		return fmt.Errorf("unknown chart kind %q", c.Kind)
	}
}
