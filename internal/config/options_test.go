package config

import (
	"errors"
	"testing"

	apperrors "github.com/agbru/medboot/internal/errors"
)

func TestDefaultOptions(t *testing.T) {
	t.Parallel()
	o := DefaultOptions()
	if err := o.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if o.NIter != 1000 || o.RegType != RegOLS || o.Threads != 2 {
		t.Errorf("unexpected defaults %+v", o)
	}
	if o.Mode != ModeAuto || o.OnFailure != FailAbort || o.IndexRange != IndexFull || o.ResampleCovariates {
		t.Errorf("unexpected defaults %+v", o)
	}
}

func TestParseOptions(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		pairs   map[string]string
		wantErr bool
		check   func(*testing.T, Options)
	}{
		{
			name:  "empty keeps defaults",
			pairs: nil,
			check: func(t *testing.T, o Options) {
				if o != DefaultOptions() {
					t.Errorf("got %+v, want defaults", o)
				}
			},
		},
		{
			name:  "all recognised names",
			pairs: map[string]string{"niter": "500", "reg_type": "QR", "n_threads": "unbounded", "seed": "42", "mode": "sequential", "on_failure": "nan", "index_range": "legacy", "resample_covariates": "true"},
			check: func(t *testing.T, o Options) {
				want := Options{NIter: 500, RegType: RegQR, Threads: Unbounded, Seed: 42, Mode: ModeSequential, OnFailure: FailNaN, IndexRange: IndexLegacy, ResampleCovariates: true}
				if o != want {
					t.Errorf("got %+v, want %+v", o, want)
				}
			},
		},
		{
			name:  "names are case insensitive",
			pairs: map[string]string{"NITER": "7"},
			check: func(t *testing.T, o Options) {
				if o.NIter != 7 {
					t.Errorf("NIter = %d, want 7", o.NIter)
				}
			},
		},
		{name: "unknown name", pairs: map[string]string{"nthreads": "4"}, wantErr: true},
		{name: "bad reg_type", pairs: map[string]string{"reg_type": "lasso"}, wantErr: true},
		{name: "zero niter", pairs: map[string]string{"niter": "0"}, wantErr: true},
		{name: "non integer niter", pairs: map[string]string{"niter": "many"}, wantErr: true},
		{name: "negative threads", pairs: map[string]string{"n_threads": "-3"}, wantErr: true},
		{name: "bad mode", pairs: map[string]string{"mode": "gpu"}, wantErr: true},
		{name: "bad policy", pairs: map[string]string{"on_failure": "retry"}, wantErr: true},
		{name: "bad index range", pairs: map[string]string{"index_range": "half"}, wantErr: true},
		{name: "bad seed", pairs: map[string]string{"seed": "-1"}, wantErr: true},
		{name: "bad bool", pairs: map[string]string{"resample_covariates": "perhaps"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			o, err := ParseOptions(tt.pairs)
			if tt.wantErr {
				var cfgErr apperrors.ConfigError
				if !errors.As(err, &cfgErr) {
					t.Fatalf("expected ConfigError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, o)
		})
	}
}

func TestParseThreads(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"0", 0, false},
		{"8", 8, false},
		{" 3 ", 3, false},
		{"unbounded", Unbounded, false},
		{"ALL", Unbounded, false},
		{"max", Unbounded, false},
		{"inf", Unbounded, false},
		{"-1", 0, true},
		{"four", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseThreads(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseThreads(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseThreads(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
	if FormatThreads(Unbounded) != "unbounded" || FormatThreads(4) != "4" {
		t.Error("FormatThreads should round-trip through ParseThreads")
	}
}

func TestOptionNames(t *testing.T) {
	t.Parallel()
	want := []string{"index_range", "mode", "n_threads", "niter", "on_failure", "reg_type", "resample_covariates", "seed"}
	got := OptionNames()
	if len(got) != len(want) {
		t.Fatalf("OptionNames() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("OptionNames()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
