// Package bootstrap draws resampled datasets and re-estimates the path
// coefficients on each of them.
package bootstrap

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/agbru/medboot/internal/config"
	"github.com/agbru/medboot/internal/model"
	"github.com/agbru/medboot/internal/pathest"
)

// Indices draws n zero-based observation indices uniformly with replacement.
//
// With config.IndexLegacy the last observation is never drawn, matching the
// historical generator that only produced 1-based indices in [1, n-1]. A
// single-observation sample always draws index 0.
func Indices(rng *rand.Rand, n int, r config.IndexRange) []int {
	upper := n
	if r == config.IndexLegacy && n > 1 {
		upper = n - 1
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = rng.IntN(upper)
	}
	return idx
}

// Resample builds the dataset selected by idx. X, Y, every M[p] and every
// present W[p] use the same rows so subjects stay aligned across operands.
// C is shared unresampled unless resampleCovariates is set.
func Resample(m *model.Model, idx []int, resampleCovariates bool) model.Dataset {
	src := m.Data
	d := model.Dataset{
		X: gatherVec(src.X, idx),
		Y: gatherVec(src.Y, idx),
		M: make([]*mat.Dense, len(src.M)),
		W: make([]*mat.Dense, len(src.W)),
		C: src.C,
	}
	for p := range src.M {
		d.M[p] = gatherRows(src.M[p], idx)
		if src.W[p] != nil {
			d.W[p] = gatherRows(src.W[p], idx)
		}
	}
	if resampleCovariates && src.C != nil {
		d.C = gatherRows(src.C, idx)
	}
	return d
}

func gatherVec(v *mat.VecDense, idx []int) *mat.VecDense {
	out := mat.NewVecDense(len(idx), nil)
	for i, r := range idx {
		out.SetVec(i, v.AtVec(r))
	}
	return out
}

func gatherRows(m *mat.Dense, idx []int) *mat.Dense {
	_, c := m.Dims()
	out := mat.NewDense(len(idx), c, nil)
	for i, r := range idx {
		out.SetRow(i, m.RawRowView(r))
	}
	return out
}

// IndexObserver receives the indices drawn for each iteration. It is called
// from worker goroutines and must be safe for concurrent use.
type IndexObserver func(iteration int, idx []int)

// Sampler runs single bootstrap iterations against a fixed model.
//
// Iteration i draws from its own PCG stream keyed by (seed, i), so the
// resample of an iteration does not depend on which worker runs it or when.
type Sampler struct {
	model     *model.Model
	estimator pathest.Estimator
	seed      uint64
	indexMode config.IndexRange
	resampleC bool
	observe   IndexObserver
}

// SamplerOption configures a Sampler.
type SamplerOption func(*Sampler)

// WithIndexObserver installs an observer for the drawn indices.
func WithIndexObserver(o IndexObserver) SamplerOption {
	return func(s *Sampler) { s.observe = o }
}

// NewSampler returns a Sampler for m. seed must already be resolved; a zero
// seed is used as is.
func NewSampler(m *model.Model, est pathest.Estimator, opts config.Options, seed uint64, options ...SamplerOption) *Sampler {
	s := &Sampler{
		model:     m,
		estimator: est,
		seed:      seed,
		indexMode: opts.IndexRange,
		resampleC: opts.ResampleCovariates,
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// Rand returns the random stream of iteration i.
func (s *Sampler) Rand(i int) *rand.Rand {
	return rand.New(rand.NewPCG(s.seed, uint64(i)))
}

// Draw resamples the model for iteration i and estimates its coefficients.
func (s *Sampler) Draw(i int) ([]model.Coefficients, error) {
	idx := Indices(s.Rand(i), s.model.N, s.indexMode)
	if s.observe != nil {
		s.observe(i, idx)
	}
	return s.estimator.Estimate(Resample(s.model, idx, s.resampleC))
}
