// This file contains environment variable overrides.

package config

import (
	"flag"

	"github.com/caarlos0/env/v11"

	apperrors "github.com/agbru/medboot/internal/errors"
)

// envConfig mirrors the binary configuration as MEDBOOT_* variables. Values
// stay textual so that they go through the same option setters as flags.
type envConfig struct {
	NIter              string `env:"NITER"`
	RegType            string `env:"REG_TYPE"`
	Threads            string `env:"N_THREADS"`
	Seed               string `env:"SEED"`
	Mode               string `env:"MODE"`
	OnFailure          string `env:"ON_FAILURE"`
	IndexRange         string `env:"INDEX_RANGE"`
	ResampleCovariates string `env:"RESAMPLE_COVARIATES"`

	Observations *int    `env:"N"`
	Stages       *int    `env:"STAGES"`
	Mediators    *int    `env:"MEDIATORS"`
	Moderators   *int    `env:"MODERATORS"`
	Covariates   *int    `env:"COVARIATES"`
	DataSeed     *uint64 `env:"DATA_SEED"`
	LogLevel     string  `env:"LOG_LEVEL"`
}

// envOverride maps one option name to its env value and the flag that
// shadows it.
type envOverride struct {
	option string
	flag   string
	value  func(*envConfig) string
}

// envOverrides is the declarative table of option overrides.
var envOverrides = []envOverride{
	{"niter", "niter", func(e *envConfig) string { return e.NIter }},
	{"reg_type", "reg-type", func(e *envConfig) string { return e.RegType }},
	{"n_threads", "threads", func(e *envConfig) string { return e.Threads }},
	{"seed", "seed", func(e *envConfig) string { return e.Seed }},
	{"mode", "mode", func(e *envConfig) string { return e.Mode }},
	{"on_failure", "on-failure", func(e *envConfig) string { return e.OnFailure }},
	{"index_range", "index-range", func(e *envConfig) string { return e.IndexRange }},
	{"resample_covariates", "resample-covariates", func(e *envConfig) string { return e.ResampleCovariates }},
}

// applyEnvOverrides applies environment variable values to the configuration
// for any flags that were not explicitly set on the command line.
// This implements the priority: CLI flags > Environment variables > file > Defaults.
func applyEnvOverrides(cfg *AppConfig, fs *flag.FlagSet) error {
	var e envConfig
	if err := env.ParseWithOptions(&e, env.Options{Prefix: EnvPrefix}); err != nil {
		return apperrors.NewConfigError("environment: %v", err)
	}

	pairs := make(map[string]string)
	for _, o := range envOverrides {
		if v := o.value(&e); v != "" && !isFlagSet(fs, o.flag) {
			pairs[o.option] = v
		}
	}
	if err := applyOptionPairs(&cfg.Options, pairs); err != nil {
		return err
	}

	setInt := func(dst *int, v *int, flagName string) {
		if v != nil && !isFlagSet(fs, flagName) {
			*dst = *v
		}
	}
	setInt(&cfg.Data.Observations, e.Observations, "n")
	setInt(&cfg.Data.Stages, e.Stages, "stages")
	setInt(&cfg.Data.Mediators, e.Mediators, "mediators")
	setInt(&cfg.Data.Moderators, e.Moderators, "moderators")
	setInt(&cfg.Data.Covariates, e.Covariates, "covariates")
	if e.DataSeed != nil && !isFlagSet(fs, "data-seed") {
		cfg.Data.Seed = *e.DataSeed
	}
	if e.LogLevel != "" && !isFlagSet(fs, "log-level") {
		cfg.LogLevel = e.LogLevel
	}
	return nil
}
