package cmd

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/KaramelBytes/surveyloom-cli/internal/chart"
	"github.com/KaramelBytes/surveyloom-cli/internal/survey"
	"github.com/KaramelBytes/surveyloom-cli/internal/utils"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	corrFields []string
	corrJSON   bool
	corrChart  string
)

// defaultCorrFields are the study-habit factors compared against CGPA.
var defaultCorrFields = []string{
	survey.FieldStudyHours, survey.FieldAttendancePct, survey.FieldStudySessions, survey.FieldCGPA,
}

var corrCmd = &cobra.Command{
	Use:   "corr <source>",
	Short: "Pairwise Pearson correlation matrix of numeric fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := openTable(cmd, args[0])
		if err != nil {
			return err
		}
		fields := corrFields
		if len(fields) == 0 {
			for _, f := range defaultCorrFields {
				if k, ok := t.Kind(f); ok && k == survey.KindNumeric {
					fields = append(fields, f)
				}
			}
		}
		m, err := survey.CorrelationMatrix(t, fields)
		if err != nil {
			return err
		}
		if corrChart != "" {
			var buf bytes.Buffer
			if err := chart.Heatmap(&buf, "Correlation matrix", m); err != nil {
				return err
			}
			if err := utils.SafeWriteFile(corrChart, buf.Bytes()); err != nil {
				return err
			}
		}
		out := cmd.OutOrStdout()
		if corrJSON {
			return writeJSON(out, corrView(m))
		}
		header := append([]string{""}, m.Fields...)
		rows := make([][]string, len(m.Fields))
		for i, f := range m.Fields {
			row := []string{f}
			for _, v := range m.Values[i] {
				if math.IsNaN(v) {
					row = append(row, "n/a")
				} else {
					row = append(row, strconv.FormatFloat(v, 'f', 3, 64))
				}
			}
			rows[i] = row
		}
		printTable(out, header, rows)
		for _, u := range m.Undefined {
			color.New(color.FgYellow).Fprintf(out, "⚠ %v\n", u)
		}
		return nil
	},
}

type corrJSONView struct {
	Fields    []string     `json:"fields"`
	Values    [][]*float64 `json:"values"`
	N         [][]int      `json:"n"`
	Undefined []string     `json:"undefined,omitempty"`
}

// corrView replaces undefined coefficients with null for JSON output.
func corrView(m *survey.CorrMatrix) corrJSONView {
	v := corrJSONView{Fields: m.Fields, N: m.N}
	for _, row := range m.Values {
		out := make([]*float64, len(row))
		for j := range row {
			if !math.IsNaN(row[j]) {
				x := row[j]
				out[j] = &x
			}
		}
		v.Values = append(v.Values, out)
	}
	for _, u := range m.Undefined {
		v.Undefined = append(v.Undefined, u.Error())
	}
	return v
}

func init() {
	rootCmd.AddCommand(corrCmd)
	corrCmd.Flags().StringSliceVar(&corrFields, "fields", nil, fmt.Sprintf("numeric fields (default %v where present)", defaultCorrFields))
	corrCmd.Flags().BoolVar(&corrJSON, "json", false, "print the matrix as JSON (undefined pairs are null)")
	corrCmd.Flags().StringVar(&corrChart, "chart", "", "also write a heatmap PNG to this path")
}
