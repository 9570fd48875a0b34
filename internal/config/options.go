// Package config holds the typed bootstrap options and the configuration of
// the medboot binary. Options replace free-form name/value option lists: the
// recognised names are enumerated in one table and anything else is a
// ConfigError.
package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/agbru/medboot/internal/errors"
)

// RegType selects the least-squares solver used by the path estimator.
type RegType string

const (
	// RegOLS solves the normal equations through a Cholesky factorisation.
	RegOLS RegType = "ols"
	// RegQR solves the design matrix through a Householder QR factorisation.
	RegQR RegType = "qr"
)

// ExecMode selects how bootstrap iterations are dispatched.
type ExecMode string

const (
	// ModeAuto uses the worker pool when the capability probe grants one.
	ModeAuto ExecMode = "auto"
	// ModeSequential always runs iterations one at a time in index order.
	ModeSequential ExecMode = "sequential"
	// ModeParallel always runs iterations on a worker pool.
	ModeParallel ExecMode = "parallel"
)

// FailurePolicy decides what a failed bootstrap iteration does to the run.
type FailurePolicy string

const (
	// FailAbort stops the run and returns the estimator error.
	FailAbort FailurePolicy = "abort"
	// FailNaN records the iteration row as NaN and keeps going.
	FailNaN FailurePolicy = "nan"
)

// IndexRange selects the range bootstrap indices are drawn from.
type IndexRange string

const (
	// IndexFull draws every observation with equal probability.
	IndexFull IndexRange = "full"
	// IndexLegacy never draws the last observation, reproducing the
	// historical [1, n-1] generator.
	IndexLegacy IndexRange = "legacy"
)

// Unbounded is the n_threads sentinel meaning "every CPU available".
const Unbounded = -1

// Default option values.
const (
	DefaultNIter   = 1000
	DefaultThreads = 2
)

// Options configures one bootstrap run.
type Options struct {
	// NIter is the number of bootstrap iterations.
	NIter int
	// RegType is the regression solver.
	RegType RegType
	// Threads is the worker pool size; 0 disables the pool and Unbounded uses
	// every available CPU.
	Threads int
	// Seed seeds the resampling streams; 0 picks a time-based seed.
	Seed uint64
	// Mode forces or auto-selects the execution mode.
	Mode ExecMode
	// OnFailure is the per-iteration estimator failure policy.
	OnFailure FailurePolicy
	// IndexRange is the resampling index range.
	IndexRange IndexRange
	// ResampleCovariates resamples C in lockstep with X, Y, M and W.
	ResampleCovariates bool
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		NIter:      DefaultNIter,
		RegType:    RegOLS,
		Threads:    DefaultThreads,
		Mode:       ModeAuto,
		OnFailure:  FailAbort,
		IndexRange: IndexFull,
	}
}

// Validate checks every option against its allowed values.
func (o Options) Validate() error {
	if o.NIter <= 0 {
		return apperrors.NewConfigError("niter must be a positive integer, got %d", o.NIter)
	}
	switch o.RegType {
	case RegOLS, RegQR:
	default:
		return apperrors.NewConfigError("reg_type %q is not one of [ols qr]", o.RegType)
	}
	if o.Threads < Unbounded {
		return apperrors.NewConfigError("n_threads must be >= 0 or %q, got %d", "unbounded", o.Threads)
	}
	switch o.Mode {
	case ModeAuto, ModeSequential, ModeParallel:
	default:
		return apperrors.NewConfigError("mode %q is not one of [auto sequential parallel]", o.Mode)
	}
	switch o.OnFailure {
	case FailAbort, FailNaN:
	default:
		return apperrors.NewConfigError("on_failure %q is not one of [abort nan]", o.OnFailure)
	}
	switch o.IndexRange {
	case IndexFull, IndexLegacy:
	default:
		return apperrors.NewConfigError("index_range %q is not one of [full legacy]", o.IndexRange)
	}
	return nil
}

// optionSetter applies a textual value to one named option.
type optionSetter func(*Options, string) error

// optionTable is the table of recognised option names.
var optionTable = map[string]optionSetter{
	"niter": func(o *Options, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return apperrors.NewConfigError("niter: %q is not an integer", v)
		}
		o.NIter = n
		return nil
	},
	"reg_type": func(o *Options, v string) error {
		o.RegType = RegType(strings.ToLower(strings.TrimSpace(v)))
		return nil
	},
	"n_threads": func(o *Options, v string) error {
		n, err := ParseThreads(v)
		if err != nil {
			return err
		}
		o.Threads = n
		return nil
	},
	"seed": func(o *Options, v string) error {
		s, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return apperrors.NewConfigError("seed: %q is not an unsigned integer", v)
		}
		o.Seed = s
		return nil
	},
	"mode": func(o *Options, v string) error {
		o.Mode = ExecMode(strings.ToLower(strings.TrimSpace(v)))
		return nil
	},
	"on_failure": func(o *Options, v string) error {
		o.OnFailure = FailurePolicy(strings.ToLower(strings.TrimSpace(v)))
		return nil
	},
	"index_range": func(o *Options, v string) error {
		o.IndexRange = IndexRange(strings.ToLower(strings.TrimSpace(v)))
		return nil
	},
	"resample_covariates": func(o *Options, v string) error {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return apperrors.NewConfigError("resample_covariates: %q is not a boolean", v)
		}
		o.ResampleCovariates = b
		return nil
	},
}

// OptionNames returns the recognised option names in sorted order.
func OptionNames() []string {
	names := make([]string, 0, len(optionTable))
	for name := range optionTable {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseOptions builds Options from name/value pairs on top of the defaults.
// Unknown names and malformed values fail with a ConfigError.
func ParseOptions(pairs map[string]string) (Options, error) {
	opts := DefaultOptions()
	if err := opts.Apply(pairs); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Apply overrides o with name/value pairs and validates the result.
func (o *Options) Apply(pairs map[string]string) error {
	names := make([]string, 0, len(pairs))
	for name := range pairs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		set, ok := optionTable[strings.ToLower(name)]
		if !ok {
			return apperrors.NewConfigError("unknown option %q (recognised: %s)", name, strings.Join(OptionNames(), ", "))
		}
		if err := set(o, pairs[name]); err != nil {
			return err
		}
	}
	return o.Validate()
}

// ParseThreads parses an n_threads value: a non-negative integer or one of
// "unbounded", "all", "max".
func ParseThreads(v string) (int, error) {
	switch s := strings.ToLower(strings.TrimSpace(v)); s {
	case "unbounded", "all", "max", "inf":
		return Unbounded, nil
	default:
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return 0, apperrors.NewConfigError("n_threads: %q is not a non-negative integer or \"unbounded\"", v)
		}
		return n, nil
	}
}

// FormatThreads renders a Threads value the way ParseThreads reads it.
func FormatThreads(n int) string {
	if n == Unbounded {
		return "unbounded"
	}
	return fmt.Sprint(n)
}
