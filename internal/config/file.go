package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	apperrors "github.com/agbru/medboot/internal/errors"
)

// threadsValue decodes n_threads from either a TOML integer or a string such
// as "unbounded".
type threadsValue struct {
	n   int
	set bool
}

// UnmarshalTOML implements toml.Unmarshaler.
func (t *threadsValue) UnmarshalTOML(v any) error {
	var err error
	switch x := v.(type) {
	case int64:
		t.n, err = ParseThreads(fmt.Sprint(x))
	case string:
		t.n, err = ParseThreads(x)
	default:
		err = apperrors.NewConfigError("n_threads: unsupported TOML value %v", v)
	}
	t.set = err == nil
	return err
}

type fileConfig struct {
	Bootstrap struct {
		NIter              int          `toml:"niter"`
		RegType            string       `toml:"reg_type"`
		Threads            threadsValue `toml:"n_threads"`
		Seed               uint64       `toml:"seed"`
		Mode               string       `toml:"mode"`
		OnFailure          string       `toml:"on_failure"`
		IndexRange         string       `toml:"index_range"`
		ResampleCovariates bool         `toml:"resample_covariates"`
	} `toml:"bootstrap"`
	Data struct {
		Observations int    `toml:"observations"`
		Stages       int    `toml:"stages"`
		Mediators    int    `toml:"mediators"`
		Moderators   int    `toml:"moderators"`
		Covariates   int    `toml:"covariates"`
		Seed         uint64 `toml:"seed"`
	} `toml:"data"`
	LogLevel string `toml:"log_level"`
}

// applyFile merges a TOML configuration file into cfg. Only keys present in
// the file are applied; unknown keys are a ConfigError.
func applyFile(cfg *AppConfig, path string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return apperrors.WrapError(apperrors.NewConfigError("%v", err), "load config %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return apperrors.NewConfigError("config %s: unknown key %q", path, undecoded[0].String())
	}

	b := raw.Bootstrap
	o := &cfg.Options
	if meta.IsDefined("bootstrap", "niter") {
		o.NIter = b.NIter
	}
	if meta.IsDefined("bootstrap", "reg_type") {
		o.RegType = RegType(b.RegType)
	}
	if b.Threads.set {
		o.Threads = b.Threads.n
	}
	if meta.IsDefined("bootstrap", "seed") {
		o.Seed = b.Seed
	}
	if meta.IsDefined("bootstrap", "mode") {
		o.Mode = ExecMode(b.Mode)
	}
	if meta.IsDefined("bootstrap", "on_failure") {
		o.OnFailure = FailurePolicy(b.OnFailure)
	}
	if meta.IsDefined("bootstrap", "index_range") {
		o.IndexRange = IndexRange(b.IndexRange)
	}
	if meta.IsDefined("bootstrap", "resample_covariates") {
		o.ResampleCovariates = b.ResampleCovariates
	}

	d := raw.Data
	if meta.IsDefined("data", "observations") {
		cfg.Data.Observations = d.Observations
	}
	if meta.IsDefined("data", "stages") {
		cfg.Data.Stages = d.Stages
	}
	if meta.IsDefined("data", "mediators") {
		cfg.Data.Mediators = d.Mediators
	}
	if meta.IsDefined("data", "moderators") {
		cfg.Data.Moderators = d.Moderators
	}
	if meta.IsDefined("data", "covariates") {
		cfg.Data.Covariates = d.Covariates
	}
	if meta.IsDefined("data", "seed") {
		cfg.Data.Seed = d.Seed
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = raw.LogLevel
	}
	return nil
}
