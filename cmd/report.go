package cmd

import (
	"fmt"

	"github.com/KaramelBytes/surveyloom-cli/internal/report"
	"github.com/KaramelBytes/surveyloom-cli/internal/utils"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	repOutput     string
	repChartsDir  string
	repNoCharts   bool
	repPages      []string
	repSampleRows int
	repBins       int
)

var reportCmd = &cobra.Command{
	Use:   "report <source>",
	Short: "Build the dashboard pages as a Markdown report with PNG charts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := report.ValidatePages(repPages); err != nil {
			return err
		}
		s := settings()
		t, err := openTable(cmd, args[0])
		if err != nil {
			return err
		}
		opt := report.Options{
			HistogramBins: s.HistogramBins,
			SampleRows:    s.SampleRows,
			Pages:         repPages,
		}
		if cmd.Flags().Changed("sample-rows") {
			opt.SampleRows = repSampleRows
		}
		if cmd.Flags().Changed("bins") {
			opt.HistogramBins = repBins
		}
		r := report.Build(t, s.Survey.Metrics, opt)

		out := cmd.OutOrStdout()
		if !repNoCharts {
			dir := s.ChartsDir
			if repChartsDir != "" {
				dir = repChartsDir
			}
			files, err := r.WriteCharts(dir)
			if err != nil {
				return err
			}
			if repOutput != "" {
				color.New(color.FgGreen).Fprintf(out, "✓ Wrote %d charts to %s\n", len(files), dir)
			}
		}
		md := r.Markdown()
		if repOutput == "" {
			fmt.Fprintln(out, md)
			return nil
		}
		if err := utils.SafeWriteFile(repOutput, []byte(md)); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		color.New(color.FgGreen).Fprintf(out, "✓ Wrote report to %s\n", repOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVarP(&repOutput, "output", "o", "", "path to write the Markdown report (default stdout)")
	reportCmd.Flags().StringVar(&repChartsDir, "charts-dir", "", "directory for chart PNGs (default from config)")
	reportCmd.Flags().BoolVar(&repNoCharts, "no-charts", false, "skip rendering chart images")
	reportCmd.Flags().StringSliceVar(&repPages, "pages", nil, "pages to include: overview, study-habits, non-academic, arts-faculty (default all)")
	reportCmd.Flags().IntVar(&repSampleRows, "sample-rows", 5, "number of sample rows to include (0 disables)")
	reportCmd.Flags().IntVar(&repBins, "bins", 20, "CGPA histogram bins")
}
