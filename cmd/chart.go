package cmd

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/KaramelBytes/surveyloom-cli/internal/chart"
	"github.com/KaramelBytes/surveyloom-cli/internal/report"
	"github.com/KaramelBytes/surveyloom-cli/internal/survey"
	"github.com/KaramelBytes/surveyloom-cli/internal/utils"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	chX      string
	chY      string
	chGroup  string
	chFields []string
	chBins   int
	chFunc   string
	chTitle  string
	chOutput string
)

var chartCmd = &cobra.Command{
	Use:   "chart <bar|pie|histogram|scatter|box|grouped|heatmap> <source>",
	Short: "Render one chart of a survey field to PNG",
	Long: `Render one chart to PNG:
  bar        --group G [--y V --func mean]   (counts rows per group without --y)
  pie        --group G                       (share of rows per group)
  histogram  --x F [--bins N]
  scatter    --x F --y F                     (with OLS trendline)
  box        --group G --y V
  grouped    --x F --group G                 (row counts of F split by G)
  heatmap    [--fields a,b,c]`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := report.Kind(strings.ToLower(args[0]))
		if chOutput == "" {
			return fmt.Errorf("--output is required")
		}
		t, err := openTable(cmd, args[1])
		if err != nil {
			return err
		}
		c, err := describeChart(t, kind)
		if err != nil {
			return err
		}
		if chTitle != "" {
			c.Title = chTitle
		}
		var buf bytes.Buffer
		if err := report.Render(&buf, c); err != nil {
			return err
		}
		if err := utils.SafeWriteFile(chOutput, buf.Bytes()); err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Wrote %s chart to %s\n", kind, chOutput)
		return nil
	},
}

func need(flag, v string) error {
	if v == "" {
		return fmt.Errorf("--%s is required for this chart", flag)
	}
	return nil
}

func describeChart(t *survey.Table, kind report.Kind) (*report.Chart, error) {
	c := &report.Chart{Kind: kind, XName: chX, YName: chY}
	switch kind {
	case report.KindBar:
		if err := need("group", chGroup); err != nil {
			return nil, err
		}
		c.XName = chGroup
		if chY == "" {
			counts, err := survey.ValueCounts(t, chGroup)
			if err != nil {
				return nil, err
			}
			c.Title = "Rows by " + chGroup
			c.Bars = chart.FromCounts(counts)
			return c, nil
		}
		fn, err := survey.ParseAggFunc(chFunc)
		if err != nil {
			return nil, err
		}
		groups, err := t.Aggregate(chGroup, chY, fn)
		if err != nil {
			return nil, err
		}
		c.Title = fmt.Sprintf("%s %s by %s", fn, chY, chGroup)
		c.Bars = chart.FromGroups(groups)
	case report.KindPie:
		if err := need("group", chGroup); err != nil {
			return nil, err
		}
		counts, err := survey.ValueCounts(t, chGroup)
		if err != nil {
			return nil, err
		}
		c.Title = "Share of rows by " + chGroup
		c.XName = chGroup
		c.Bars = chart.FromCounts(counts)
	case report.KindGrouped:
		if err := need("x", chX); err != nil {
			return nil, err
		}
		if err := need("group", chGroup); err != nil {
			return nil, err
		}
		ct, err := survey.CrossCounts(t, chX, chGroup)
		if err != nil {
			return nil, err
		}
		c.Title = fmt.Sprintf("%s by %s", chX, chGroup)
		c.Cross = ct
	case report.KindHistogram:
		if err := need("x", chX); err != nil {
			return nil, err
		}
		bins, err := survey.Histogram(t, chX, chBins)
		if err != nil {
			return nil, err
		}
		c.Title = "Distribution of " + chX
		c.Bins = bins
	case report.KindScatter:
		if err := need("x", chX); err != nil {
			return nil, err
		}
		if err := need("y", chY); err != nil {
			return nil, err
		}
		xs, ys, err := survey.Pairs(t, chX, chY)
		if err != nil {
			return nil, err
		}
		c.Title = fmt.Sprintf("%s vs %s", chX, chY)
		c.X, c.Y = xs, ys
		if line, err := survey.Trendline(t, chX, chY); err == nil {
			c.Line = &line
		}
	case report.KindBox:
		if err := need("group", chGroup); err != nil {
			return nil, err
		}
		if err := need("y", chY); err != nil {
			return nil, err
		}
		series, err := survey.GroupSeries(t, chGroup, chY, nil)
		if err != nil {
			return nil, err
		}
		c.Title = fmt.Sprintf("%s by %s", chY, chGroup)
		c.Series = series
	case report.KindHeatmap:
		fields := chFields
		if len(fields) == 0 {
			fields = defaultCorrFields
		}
		m, err := survey.CorrelationMatrix(t, fields)
		if err != nil {
			return nil, err
		}
		c.Title = "Correlation matrix"
		c.Corr = m
	default:
		return nil, fmt.Errorf("unknown chart kind %q (use bar, pie, histogram, scatter, box, grouped or heatmap)", kind)
	}
	return c, nil
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.Flags().StringVarP(&chOutput, "output", "o", "", "PNG path to write")
	chartCmd.Flags().StringVar(&chX, "x", "", "x field")
	chartCmd.Flags().StringVar(&chY, "y", "", "y / value field")
	chartCmd.Flags().StringVar(&chGroup, "group", "", "grouping field")
	chartCmd.Flags().StringSliceVar(&chFields, "fields", nil, "heatmap fields")
	chartCmd.Flags().IntVar(&chBins, "bins", 20, "histogram bins")
	chartCmd.Flags().StringVar(&chFunc, "func", "mean", "bar aggregate: mean|count|sum|min|max|median")
	chartCmd.Flags().StringVar(&chTitle, "title", "", "chart title")
}
