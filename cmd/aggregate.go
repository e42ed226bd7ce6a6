package cmd

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/KaramelBytes/surveyloom-cli/internal/chart"
	"github.com/KaramelBytes/surveyloom-cli/internal/survey"
	"github.com/KaramelBytes/surveyloom-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	aggGroup   string
	aggValue   string
	aggFunc    string
	aggPair    string
	aggOrder   []string
	aggByValue bool
	aggJSON    bool
	aggChart   string
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate <source>",
	Short: "Group a survey by one field and reduce another",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fn, err := survey.ParseAggFunc(aggFunc)
		if err != nil {
			return err
		}
		if aggValue == "" && fn != survey.AggCount {
			return fmt.Errorf("--value is required for %s", fn)
		}
		t, err := openTable(cmd, args[0])
		if err != nil {
			return err
		}
		groups, err := survey.Aggregate(t, survey.AggregateSpec{
			GroupField: aggGroup,
			ValueField: aggValue,
			Func:       fn,
			PairField:  aggPair,
			Order:      aggOrder,
		})
		if err != nil {
			return err
		}
		if aggByValue {
			groups = survey.SortByValue(groups)
		}
		if aggChart != "" {
			var buf bytes.Buffer
			title := fmt.Sprintf("%s of %s by %s", fn, aggValue, aggGroup)
			if aggValue == "" {
				title = fmt.Sprintf("rows by %s", aggGroup)
			}
			if err := chart.Bars(&buf, title, chart.FromGroups(groups)); err != nil {
				return err
			}
			if err := utils.SafeWriteFile(aggChart, buf.Bytes()); err != nil {
				return err
			}
		}
		out := cmd.OutOrStdout()
		if aggJSON {
			return writeJSON(out, groups)
		}
		rows := make([][]string, 0, len(groups))
		for _, g := range groups {
			rows = append(rows, []string{g.Key, strconv.FormatFloat(g.Value, 'f', 4, 64), strconv.Itoa(g.N)})
		}
		printTable(out, []string{aggGroup, string(fn), "N"}, rows)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(aggregateCmd)
	aggregateCmd.Flags().StringVarP(&aggGroup, "group", "g", "", "field to group by")
	aggregateCmd.Flags().StringVarP(&aggValue, "value", "v", "", "numeric field to reduce (optional for count)")
	aggregateCmd.Flags().StringVarP(&aggFunc, "func", "f", "mean", "mean|count|sum|min|max|median|corr")
	aggregateCmd.Flags().StringVar(&aggPair, "pair", "", "second numeric field for corr")
	aggregateCmd.Flags().StringSliceVar(&aggOrder, "order", nil, "explicit group order (comma-separated)")
	aggregateCmd.Flags().BoolVar(&aggByValue, "sort", false, "sort groups by descending value")
	aggregateCmd.Flags().BoolVar(&aggJSON, "json", false, "print groups as JSON")
	aggregateCmd.Flags().StringVar(&aggChart, "chart", "", "also write a bar chart PNG to this path")
	_ = aggregateCmd.MarkFlagRequired("group")
}
