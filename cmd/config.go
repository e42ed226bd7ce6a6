package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/surveyloom-cli/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configShowYAML bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set SurveyLoom configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		c := settings()
		if configShowYAML {
			b, err := yaml.Marshal(c)
			if err != nil {
				return fmt.Errorf("marshal yaml: %w", err)
			}
			_, err = out.Write(b)
			return err
		}
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded; showing defaults")
		}
		s := c.Survey
		fmt.Fprintf(out, "http_timeout_sec: %d\n", c.HTTPTimeoutSec)
		fmt.Fprintf(out, "charts_dir: %s\n", c.ChartsDir)
		fmt.Fprintf(out, "sample_rows: %d\n", c.SampleRows)
		fmt.Fprintf(out, "histogram_bins: %d\n", c.HistogramBins)
		fmt.Fprintf(out, "survey.encodings: %s\n", strings.Join(s.Encodings, ", "))
		fmt.Fprintf(out, "survey.admission_year_field: %s\n", s.AdmissionYearField)
		fmt.Fprintf(out, "survey.target_admission_year: %d\n", s.TargetAdmissionYear)
		fmt.Fprintf(out, "survey.column_aliases: %d\n", len(s.ColumnAliases))
		fmt.Fprintf(out, "survey.numeric_fields: %s\n", strings.Join(s.NumericFields, ", "))
		fmt.Fprintf(out, "survey.categorical_fields: %s\n", strings.Join(s.CategoricalFields, ", "))
		for _, b := range s.BandRules {
			fmt.Fprintf(out, "survey.band_rules: %s <- %s %v (%s", b.Name, b.Source, b.Boundaries, b.Interval)
			if b.DynamicTop {
				fmt.Fprint(out, ", dynamic top")
			}
			fmt.Fprintln(out, ")")
		}
		for _, m := range s.Metrics {
			fmt.Fprintf(out, "survey.metrics: %s = %s(%s)\n", m.Name, m.Kind, m.Field)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		atoi := func() (int, error) {
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return 0, fmt.Errorf("invalid int for %s: %v", key, val)
			}
			return i, nil
		}
		switch key {
		case "http_timeout_sec":
			i, err := atoi()
			if err != nil {
				return err
			}
			cfg.HTTPTimeoutSec = i
		case "charts_dir":
			cfg.ChartsDir = val
		case "sample_rows":
			i, err := atoi()
			if err != nil {
				return err
			}
			cfg.SampleRows = i
		case "histogram_bins":
			i, err := atoi()
			if err != nil || i == 0 {
				return fmt.Errorf("invalid int for %s: %v", key, val)
			}
			cfg.HistogramBins = i
		case "target_admission_year":
			i, err := atoi()
			if err != nil {
				return err
			}
			cfg.Survey.TargetAdmissionYear = i
		case "admission_year_field":
			cfg.Survey.AdmissionYearField = val
		case "encodings":
			var encs []string
			for _, e := range strings.Split(val, ",") {
				if e = strings.TrimSpace(e); e != "" {
					encs = append(encs, e)
				}
			}
			cfg.Survey.Encodings = encs
		default:
			return fmt.Errorf("unknown key: %s (settable: %s)", key, strings.Join(cfgpkg.Keys, ", "))
		}
		if err := cfg.Survey.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configShowCmd.Flags().BoolVar(&configShowYAML, "yaml", false, "print the full effective configuration as YAML")
}
