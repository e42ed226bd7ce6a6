package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/KaramelBytes/surveyloom-cli/internal/source"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	batchQuiet     bool
	batchKeepGoing bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <sources...>",
	Short: "Load several survey exports (globs and URLs allowed) and summarize each",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := source.Expand(args)
		if err != nil {
			return err
		}
		l, err := newLoader()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		total := len(files)
		var rows [][]string
		failed := 0
		for i, path := range files {
			if !batchQuiet {
				fmt.Fprintf(out, "[%d/%d] Loading %s...\n", i+1, total, filepath.Base(path))
			}
			hitsBefore, _ := l.Cache().Stats()
			t, err := loadTable(cmd.Context(), l, path)
			if err != nil {
				if !batchKeepGoing {
					return fmt.Errorf("%s: %w", path, err)
				}
				failed++
				color.New(color.FgRed).Fprintf(out, "✗ %s: %v\n", path, err)
				continue
			}
			hitsAfter, _ := l.Cache().Stats()
			cached := "no"
			if hitsAfter > hitsBefore {
				cached = "yes"
			}
			imputed := 0
			for _, n := range t.Summary().Imputed {
				imputed += n
			}
			rows = append(rows, []string{
				path,
				strconv.Itoa(t.Len()),
				strconv.Itoa(len(t.Columns())),
				strconv.Itoa(imputed),
				strconv.Itoa(len(t.Errors())),
				cached,
				t.ID(),
			})
		}
		if len(rows) > 0 {
			printTable(out, []string{"Source", "Rows", "Columns", "Imputed", "Errors", "Cached", "Table ID"}, rows)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d sources failed", failed, total)
		}
		if !batchQuiet {
			color.New(color.FgGreen).Fprintf(out, "✓ Loaded %d sources (%d distinct tables cached)\n", total, l.Cache().Len())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().BoolVar(&batchQuiet, "quiet", false, "suppress progress and non-essential output")
	batchCmd.Flags().BoolVar(&batchKeepGoing, "keep-going", false, "continue after a source fails")
}
