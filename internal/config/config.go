package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/surveyloom-cli/internal/survey"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// keyDelimiter replaces viper's default "." because survey column aliases are
// question texts that may contain dots ("S.S.C (GPA)").
const keyDelimiter = "::"

// Global configuration structure.
type Global struct {
	Survey survey.Config `mapstructure:"survey" yaml:"survey"`

	// HTTP fetch of remote sources
	HTTPTimeoutSec int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`

	// Output defaults
	ChartsDir     string `mapstructure:"charts_dir" yaml:"charts_dir"`
	SampleRows    int    `mapstructure:"sample_rows" yaml:"sample_rows"`
	HistogramBins int    `mapstructure:"histogram_bins" yaml:"histogram_bins"`
}

// Dir returns ~/.surveyloom.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".surveyloom"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.surveyloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
// A .env file in the working directory is read first when present.
func Load(cfgFile string) (*Global, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
	v.SetEnvPrefix("SURVEYLOOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(keyDelimiter, "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("http_timeout_sec", 30)
	v.SetDefault("charts_dir", "charts")
	v.SetDefault("sample_rows", 5)
	v.SetDefault("histogram_bins", 20)
	// survey keys that are commonly overridden from the environment
	v.SetDefault("survey::target_admission_year", 0)
	v.SetDefault("survey::admission_year_field", survey.FieldAdmissionYear)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Survey = c.Survey.WithDefaults()
	if err := c.Survey.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Keys lists the settable scalar keys for `config set`.
var Keys = []string{
	"http_timeout_sec", "charts_dir", "sample_rows", "histogram_bins",
	"target_admission_year", "admission_year_field", "encodings",
}
