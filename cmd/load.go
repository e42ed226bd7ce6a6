package cmd

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/KaramelBytes/surveyloom-cli/internal/survey"
	"github.com/KaramelBytes/surveyloom-cli/internal/utils"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	loadJSON       bool
	loadSampleRows int
)

var loadCmd = &cobra.Command{
	Use:   "load <source>",
	Short: "Load and normalize a survey export, then print its summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := openTable(cmd, args[0])
		if err != nil {
			return err
		}
		n := settings().SampleRows
		if cmd.Flags().Changed("rows") {
			n = loadSampleRows
		}
		out := cmd.OutOrStdout()
		if loadJSON {
			return writeJSON(out, loadView(t, n))
		}
		printSummary(out, t)
		if n != 0 {
			header, rows := t.Head(n)
			fmt.Fprintln(out)
			printTable(out, header, rows)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
	loadCmd.Flags().BoolVar(&loadJSON, "json", false, "print the summary and sample rows as JSON")
	loadCmd.Flags().IntVar(&loadSampleRows, "rows", 5, "number of sample rows to print (-1 = all, 0 = none)")
}

type tableView struct {
	ID      string           `json:"id"`
	Columns []string         `json:"columns"`
	Summary survey.Summary   `json:"summary"`
	Errors  []string         `json:"errors,omitempty"`
	Rows    []map[string]any `json:"rows,omitempty"`
}

func loadView(t *survey.Table, n int) tableView {
	v := tableView{ID: t.ID(), Columns: t.Columns(), Summary: t.Summary()}
	for _, e := range t.Errors() {
		v.Errors = append(v.Errors, e.Error())
	}
	rows := t.Maps()
	if n >= 0 && n < len(rows) {
		rows = rows[:n]
	}
	v.Rows = rows
	return v
}

func printSummary(w io.Writer, t *survey.Table) {
	s := t.Summary()
	color.New(color.FgGreen).Fprintf(w, "✓ Loaded %s: %d rows, %d columns", t.Name(), t.Len(), len(t.Columns()))
	if s.Encoding != "" {
		fmt.Fprintf(w, " (encoding %s)", s.Encoding)
	}
	fmt.Fprintln(w)
	if s.Filtered > 0 {
		fmt.Fprintf(w, "  admission-year filter removed %d of %d rows\n", s.Filtered, s.RawRows)
	}
	fmt.Fprintf(w, "  table id: %s\n", t.ID())

	fields := map[string]struct{}{}
	for k := range s.Coerced {
		fields[k] = struct{}{}
	}
	for k := range s.Imputed {
		fields[k] = struct{}{}
	}
	if len(fields) > 0 {
		names := make([]string, 0, len(fields))
		for k := range fields {
			names = append(names, k)
		}
		sort.Strings(names)
		rows := make([][]string, 0, len(names))
		for _, k := range names {
			rows = append(rows, []string{k, strconv.Itoa(s.Coerced[k]), strconv.Itoa(s.Imputed[k])})
		}
		fmt.Fprintln(w)
		printTable(w, []string{"Field", "Unparseable", "Imputed"}, rows)
	}
	for _, d := range s.Dropped {
		color.New(color.FgYellow).Fprintf(w, "⚠ dropped column %q\n", d)
	}
	for _, msg := range s.Warnings {
		color.New(color.FgYellow).Fprintf(w, "⚠ %s\n", msg)
	}
	for _, e := range t.Errors() {
		color.New(color.FgRed).Fprintf(w, "✗ %v\n", e)
	}
}

func printTable(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}

func writeJSON(w io.Writer, v any) error {
	b, err := utils.PrettyJSON(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
