package cmd

import (
	"fmt"

	"github.com/KaramelBytes/surveyloom-cli/internal/survey"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var metricsJSON bool

var metricsCmd = &cobra.Command{
	Use:   "metrics <source>",
	Short: "Headline metrics configured under survey.metrics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := openTable(cmd, args[0])
		if err != nil {
			return err
		}
		ms, errs := survey.Metrics(t, settings().Survey.Metrics)
		out := cmd.OutOrStdout()
		if metricsJSON {
			return writeJSON(out, ms)
		}
		rows := make([][]string, 0, len(ms))
		for _, m := range ms {
			val := fmt.Sprintf("%.2f", m.Value)
			if m.Kind == "share" {
				val = fmt.Sprintf("%.1f%%", m.Value)
			}
			rows = append(rows, []string{m.Name, m.Field, val, fmt.Sprint(m.N)})
		}
		printTable(out, []string{"Metric", "Field", "Value", "N"}, rows)
		for _, e := range errs {
			color.New(color.FgYellow).Fprintf(out, "⚠ %v\n", e)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(metricsCmd)
	metricsCmd.Flags().BoolVar(&metricsJSON, "json", false, "print metrics as JSON")
}
