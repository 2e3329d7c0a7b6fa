// Package config - Layered settings for the imgdiff tools.
//
// Precedence, lowest first: built-in defaults, a YAML config file, IMGDIFF_*
// environment variables, command-line flags.
package config

import (
	"strings"

	"github.com/nvr-ai/go-imgdiff/diff"
	"github.com/nvr-ai/go-imgdiff/report"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. IMGDIFF_MIN_AREA.
const EnvPrefix = "IMGDIFF"

// Modes of the single-pair CLI.
const (
	ModeQuick = "quick"
	ModeFull  = "full"
)

// Config holds every tunable of both CLIs.
type Config struct {
	Threshold            int    `mapstructure:"threshold"`
	StatsThreshold       int    `mapstructure:"stats_threshold"`
	MorphologyKernelSize int    `mapstructure:"morphology_kernel_size"`
	BlurKernelSize       int    `mapstructure:"blur_kernel_size"`
	MinArea              int    `mapstructure:"min_area"`
	Workers              int    `mapstructure:"workers"`
	OutputDir            string `mapstructure:"output_dir"`
	MetricsFile          string `mapstructure:"metrics_file"`
	Mode                 string `mapstructure:"mode"`
}

// NewDefaultConfig returns the built-in defaults.
func NewDefaultConfig() Config {
	return Config{
		Threshold:            diff.DefaultThreshold,
		StatsThreshold:       diff.DefaultStatsThreshold,
		MorphologyKernelSize: 0,
		BlurKernelSize:       0,
		MinArea:              diff.DefaultMinArea,
		Workers:              4,
		OutputDir:            "comparison_results",
		MetricsFile:          "",
		Mode:                 ModeFull,
	}
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"threshold":              "threshold",
	"stats-threshold":        "stats_threshold",
	"morphology-kernel-size": "morphology_kernel_size",
	"blur-kernel-size":       "blur_kernel_size",
	"min-area":               "min_area",
	"workers":                "workers",
	"output-dir":             "output_dir",
	"metrics-file":           "metrics_file",
	"mode":                   "mode",
}

// RegisterFlags adds the flags shared by both CLIs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := NewDefaultConfig()
	fs.String("config", "", "Path to a YAML config file.")
	fs.StringP("output-dir", "o", d.OutputDir, "Directory to write results into.")
	fs.IntP("threshold", "t", d.Threshold, "Per-channel difference a pixel must exceed to count as changed.")
	fs.Int("stats-threshold", d.StatsThreshold, "Threshold used for the raw statistics.")
	fs.Int("morphology-kernel-size", d.MorphologyKernelSize, "Morphological opening kernel size (0 disables).")
	fs.Int("blur-kernel-size", d.BlurKernelSize, "Gaussian smoothing kernel size (0 disables).")
	fs.Int("min-area", d.MinArea, "Smallest changed region kept, in pixels.")
}

// RegisterSingleFlags adds the flags of the single-pair CLI.
func RegisterSingleFlags(fs *pflag.FlagSet) {
	RegisterFlags(fs)
	fs.StringP("mode", "m", ModeFull, "Comparison mode: quick or full.")
}

// RegisterBatchFlags adds the flags of the batch CLI.
func RegisterBatchFlags(fs *pflag.FlagSet) {
	RegisterFlags(fs)
	d := NewDefaultConfig()
	fs.IntP("workers", "w", d.Workers, "Number of pairs compared concurrently.")
	fs.String("metrics-file", d.MetricsFile, "Write Prometheus metrics to this textfile when set.")
}

// Load resolves the configuration from defaults, the optional config file
// named by the --config flag, the environment, and parsed flags.
//
// Arguments:
//   - fs: A parsed flag set; may be nil.
//
// Returns:
//   - Config: The merged, validated configuration.
//   - error: An error if the config file cannot be read or a value is invalid.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()

	d := NewDefaultConfig()
	v.SetDefault("threshold", d.Threshold)
	v.SetDefault("stats_threshold", d.StatsThreshold)
	v.SetDefault("morphology_kernel_size", d.MorphologyKernelSize)
	v.SetDefault("blur_kernel_size", d.BlurKernelSize)
	v.SetDefault("min_area", d.MinArea)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("metrics_file", d.MetricsFile)
	v.SetDefault("mode", d.Mode)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
			if err := v.ReadInConfig(); err != nil {
				return Config{}, errors.Wrapf(err, "failed to read config file %s", f.Value.String())
			}
		}
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, errors.Wrapf(err, "failed to bind flag %s", name)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode config")
	}
	cfg.Mode = strings.ToLower(strings.TrimSpace(cfg.Mode))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects negative sizes and thresholds, a worker count below one,
// and unknown modes.
func (c Config) Validate() error {
	if err := c.MaskParams().Validate(); err != nil {
		return err
	}
	if c.StatsThreshold < 0 {
		return errors.Errorf("stats threshold must be >= 0, got %d", c.StatsThreshold)
	}
	if c.MinArea < 0 {
		return errors.Errorf("min area must be >= 0, got %d", c.MinArea)
	}
	if c.Workers < 1 {
		return errors.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	if c.Mode != ModeQuick && c.Mode != ModeFull {
		return errors.Errorf("mode must be %q or %q, got %q", ModeQuick, ModeFull, c.Mode)
	}
	return nil
}

// MaskParams returns the mask-building part of the configuration.
func (c Config) MaskParams() diff.MaskParams {
	return diff.MaskParams{
		Threshold:       c.Threshold,
		MorphKernelSize: c.MorphologyKernelSize,
		BlurKernelSize:  c.BlurKernelSize,
	}
}

// ReportOptions returns the artifact rendering options.
func (c Config) ReportOptions() report.Options {
	return report.Options{
		Params:         c.MaskParams(),
		StatsThreshold: c.StatsThreshold,
		MinArea:        c.MinArea,
	}
}
