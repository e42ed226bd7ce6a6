package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	cfgpkg "github.com/KaramelBytes/surveyloom-cli/internal/config"
	"github.com/KaramelBytes/surveyloom-cli/internal/source"
	"github.com/KaramelBytes/surveyloom-cli/internal/survey"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// HTTP flag (overrides config if set)
	flagHTTPTimeoutSec int
	// Source selection shared by every command that reads a survey
	flagSheetName  string
	flagSheetIndex int
	flagYear       int

	// Loaded configuration
	cfg *cfgpkg.Global
	log = zap.NewNop()

	// One cache per process so repeated sources within a run load once.
	sessionCache = survey.NewCache()
)

var rootCmd = &cobra.Command{
	Use:   "surveyloom",
	Short: "SurveyLoom CLI: normalize student survey exports and chart the results",
	Long: `SurveyLoom loads survey CSV/XLSX exports (local or over HTTP), normalizes them into a
canonical table with derived bands, and produces aggregates, correlations,
headline metrics, Markdown reports and PNG charts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ~/.surveyloom/config.yaml)")
	pf.BoolVar(&debug, "debug", false, "enable debug logging")
	pf.IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP fetch timeout in seconds (overrides config)")
	pf.StringVar(&flagSheetName, "sheet-name", "", "XLSX: sheet name to read")
	pf.IntVar(&flagSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	pf.IntVar(&flagYear, "year", 0, "keep only rows with this admission year (overrides config)")
}

func loadConfig() {
	log = zap.NewNop()
	if debug {
		if l, err := zap.NewDevelopment(); err == nil {
			log = l
		}
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		return
	}
	cfg = c
	if f := rootCmd.PersistentFlags(); f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
}

// settings returns the loaded configuration, or defaults when none loaded.
func settings() *cfgpkg.Global {
	if cfg != nil {
		return cfg
	}
	return &cfgpkg.Global{
		Survey:         survey.DefaultConfig(),
		HTTPTimeoutSec: 30,
		ChartsDir:      "charts",
		SampleRows:     5,
		HistogramBins:  20,
	}
}

func newLoader() (*survey.Loader, error) {
	sc := settings().Survey
	if rootCmd.PersistentFlags().Changed("year") {
		sc.TargetAdmissionYear = flagYear
	}
	return survey.NewLoader(sc, survey.WithCache(sessionCache), survey.WithLogger(log.Named("survey")))
}

// loadTable reads one survey source with the session loader.
func loadTable(ctx context.Context, l *survey.Loader, arg string) (*survey.Table, error) {
	opt := source.Options{
		SheetName:   flagSheetName,
		SheetIndex:  flagSheetIndex,
		HTTPTimeout: time.Duration(settings().HTTPTimeoutSec) * time.Second,
	}
	return source.Load(ctx, l, arg, opt)
}

// openTable builds a loader and reads arg.
func openTable(cmd *cobra.Command, arg string) (*survey.Table, error) {
	l, err := newLoader()
	if err != nil {
		return nil, err
	}
	return loadTable(cmd.Context(), l, arg)
}
