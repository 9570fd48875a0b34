package config

import (
	"flag"
	"fmt"
	"io"
	"strings"

	apperrors "github.com/agbru/medboot/internal/errors"
)

// EnvPrefix prefixes every environment variable read by the binary.
const EnvPrefix = "MEDBOOT_"

// DataConfig describes the synthetic dataset the binary simulates.
type DataConfig struct {
	// Observations is the number of subjects n.
	Observations int
	// Stages is the number of serial mediator blocks.
	Stages int
	// Mediators is the number of mediator columns per stage.
	Mediators int
	// Moderators is the number of moderator columns on the first stage.
	Moderators int
	// Covariates is the number of covariate columns.
	Covariates int
	// Seed seeds the simulator.
	Seed uint64
}

// AppConfig aggregates the binary's configuration.
type AppConfig struct {
	Options Options
	Data    DataConfig

	// ConfigFile is an optional TOML file with [bootstrap] and [data] tables.
	ConfigFile string
	// LogLevel is a zerolog level name.
	LogLevel string
	// JSONLogs switches the console writer off.
	JSONLogs bool
	// Quiet prints only the coefficient table.
	Quiet bool
	// Metrics prints the Prometheus exposition after the run.
	Metrics bool
	// NoColor disables colored output.
	NoColor bool
}

// DefaultAppConfig returns the binary defaults.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Options: DefaultOptions(),
		Data: DataConfig{
			Observations: 100,
			Stages:       1,
			Mediators:    1,
			Covariates:   2,
			Seed:         1,
		},
		LogLevel: "info",
	}
}

// Validate checks the options and the simulated data shape.
func (c AppConfig) Validate() error {
	if err := c.Options.Validate(); err != nil {
		return err
	}
	d := c.Data
	switch {
	case d.Observations < 3:
		return apperrors.NewConfigError("observations must be >= 3, got %d", d.Observations)
	case d.Stages < 1:
		return apperrors.NewConfigError("stages must be >= 1, got %d", d.Stages)
	case d.Mediators < 1:
		return apperrors.NewConfigError("mediators must be >= 1, got %d", d.Mediators)
	case d.Moderators < 0, d.Covariates < 0:
		return apperrors.NewConfigError("moderators and covariates must be >= 0")
	}
	return nil
}

// flagValues holds the raw flag targets before they are merged.
type flagValues struct {
	niter, threads, regType, mode, onFailure, indexRange string
	seed                                                 uint64
	resampleCovariates                                   bool
	data                                                 DataConfig
}

// ParseConfig parses command-line arguments and merges them with the
// environment and an optional TOML file.
//
// Priority: CLI flags > environment variables > config file > defaults.
func ParseConfig(programName string, args []string, errorWriter io.Writer) (AppConfig, error) {
	cfg := DefaultAppConfig()
	var fv flagValues

	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)
	fs.StringVar(&fv.niter, "niter", fmt.Sprint(DefaultNIter), "Number of bootstrap iterations.")
	fs.StringVar(&fv.regType, "reg-type", string(RegOLS), "Regression solver: ols or qr.")
	fs.StringVar(&fv.threads, "threads", FormatThreads(DefaultThreads), "Worker pool size, 0 to disable, or 'unbounded'.")
	fs.Uint64Var(&fv.seed, "seed", 0, "Resampling seed (0 = time based).")
	fs.StringVar(&fv.mode, "mode", string(ModeAuto), "Execution mode: auto, sequential or parallel.")
	fs.StringVar(&fv.onFailure, "on-failure", string(FailAbort), "Failed iteration policy: abort or nan.")
	fs.StringVar(&fv.indexRange, "index-range", string(IndexFull), "Resampling index range: full or legacy.")
	fs.BoolVar(&fv.resampleCovariates, "resample-covariates", false, "Resample covariates with the other operands.")
	fs.IntVar(&fv.data.Observations, "n", cfg.Data.Observations, "Number of simulated observations.")
	fs.IntVar(&fv.data.Stages, "stages", cfg.Data.Stages, "Number of serial mediator stages.")
	fs.IntVar(&fv.data.Mediators, "mediators", cfg.Data.Mediators, "Mediator columns per stage.")
	fs.IntVar(&fv.data.Moderators, "moderators", cfg.Data.Moderators, "Moderator columns on the first stage.")
	fs.IntVar(&fv.data.Covariates, "covariates", cfg.Data.Covariates, "Number of covariate columns.")
	fs.Uint64Var(&fv.data.Seed, "data-seed", cfg.Data.Seed, "Simulator seed.")
	fs.StringVar(&cfg.ConfigFile, "config", "", "TOML configuration file.")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error).")
	fs.BoolVar(&cfg.JSONLogs, "json-logs", false, "Emit JSON logs instead of console output.")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "Print only the coefficient table.")
	fs.BoolVar(&cfg.Metrics, "metrics", false, "Print Prometheus metrics after the run.")
	fs.BoolVar(&cfg.NoColor, "no-color", false, "Disable colored output (also honors NO_COLOR).")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	var err error
	if fs.NArg() > 0 {
		err = apperrors.NewConfigError("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	} else {
		err = mergeLayers(&cfg, fs, fv)
	}
	if err != nil {
		fmt.Fprintln(errorWriter, err)
		return AppConfig{}, err
	}
	return cfg, nil
}

// mergeLayers applies the file, environment and flag layers in increasing
// priority and validates the result.
func mergeLayers(cfg *AppConfig, fs *flag.FlagSet, fv flagValues) error {
	if cfg.ConfigFile != "" {
		if err := applyFile(cfg, cfg.ConfigFile); err != nil {
			return err
		}
	}
	if err := applyEnvOverrides(cfg, fs); err != nil {
		return err
	}
	if err := applyFlags(cfg, fs, fv); err != nil {
		return err
	}
	return cfg.Validate()
}

// applyFlags copies explicitly set flags over the merged configuration.
func applyFlags(cfg *AppConfig, fs *flag.FlagSet, fv flagValues) error {
	pairs := make(map[string]string)
	textual := map[string]struct {
		option string
		value  string
	}{
		"niter":       {"niter", fv.niter},
		"reg-type":    {"reg_type", fv.regType},
		"threads":     {"n_threads", fv.threads},
		"mode":        {"mode", fv.mode},
		"on-failure":  {"on_failure", fv.onFailure},
		"index-range": {"index_range", fv.indexRange},
	}
	for flagName, t := range textual {
		if isFlagSet(fs, flagName) {
			pairs[t.option] = t.value
		}
	}
	if isFlagSet(fs, "seed") {
		pairs["seed"] = fmt.Sprint(fv.seed)
	}
	if isFlagSet(fs, "resample-covariates") {
		pairs["resample_covariates"] = fmt.Sprint(fv.resampleCovariates)
	}
	if err := applyOptionPairs(&cfg.Options, pairs); err != nil {
		return err
	}

	dataFlags := []struct {
		name  string
		apply func()
	}{
		{"n", func() { cfg.Data.Observations = fv.data.Observations }},
		{"stages", func() { cfg.Data.Stages = fv.data.Stages }},
		{"mediators", func() { cfg.Data.Mediators = fv.data.Mediators }},
		{"moderators", func() { cfg.Data.Moderators = fv.data.Moderators }},
		{"covariates", func() { cfg.Data.Covariates = fv.data.Covariates }},
		{"data-seed", func() { cfg.Data.Seed = fv.data.Seed }},
	}
	for _, f := range dataFlags {
		if isFlagSet(fs, f.name) {
			f.apply()
		}
	}
	return nil
}

// applyOptionPairs runs the option setters without the final validation so
// that later layers can still correct an intermediate value.
func applyOptionPairs(o *Options, pairs map[string]string) error {
	for name, v := range pairs {
		set, ok := optionTable[name]
		if !ok {
			return apperrors.NewConfigError("unknown option %q", name)
		}
		if err := set(o, v); err != nil {
			return err
		}
	}
	return nil
}

// isFlagSet checks if a flag was explicitly set on the command line.
// This is used to determine whether to apply environment variable overrides.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
