package cli

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/agbru/medboot/internal/model"
)

// Summary describes the empirical bootstrap distribution of one coefficient.
type Summary struct {
	Mean  float64
	SD    float64
	Valid int
	Total int
}

// Summarize computes mean and sample standard deviation over the non-NaN
// entries of values. SD is NaN with fewer than two valid entries.
func Summarize(values []float64) Summary {
	valid := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}
	s := Summary{Mean: math.NaN(), SD: math.NaN(), Valid: len(valid), Total: len(values)}
	switch len(valid) {
	case 0:
	case 1:
		s.Mean = valid[0]
	default:
		s.Mean, s.SD = stat.MeanStdDev(valid, nil)
	}
	return s
}

// shownFields lists the fields that carry information on path p: the
// serial terms only exist past the first stage and the moderation terms
// only on moderated stages.
func shownFields(s model.Shape, p int) []model.Field {
	out := make([]model.Field, 0, len(model.Fields()))
	for _, f := range model.Fields() {
		switch f {
		case model.FieldD, model.FieldADB:
			if p == 0 {
				continue
			}
		case model.FieldE, model.FieldF:
			if !s.Moderated(p) {
				continue
			}
		}
		out = append(out, f)
	}
	return out
}
