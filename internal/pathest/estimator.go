// Package pathest fits the mediation path coefficients of one dataset.
//
// The estimator is a pure function of its input: it keeps no state between
// calls and may be shared by every bootstrap worker.
package pathest

//go:generate mockgen -destination=mocks/mock_estimator.go -package=mocks github.com/agbru/medboot/internal/pathest Estimator

import (
	"gonum.org/v1/gonum/mat"

	"github.com/agbru/medboot/internal/config"
	apperrors "github.com/agbru/medboot/internal/errors"
	"github.com/agbru/medboot/internal/model"
)

// Estimator maps one dataset to a coefficient record per path.
type Estimator interface {
	Estimate(d model.Dataset) ([]model.Coefficients, error)
}

// EstimatorFunc adapts a function to the Estimator interface.
type EstimatorFunc func(d model.Dataset) ([]model.Coefficients, error)

// Estimate calls f(d).
func (f EstimatorFunc) Estimate(d model.Dataset) ([]model.Coefficients, error) { return f(d) }

// Regression is the regression-based path estimator. Every model includes an
// intercept and the covariates:
//
//	total:     Y      ~ 1 + X + C                             -> c
//	outcome:   Y      ~ 1 + X + M[0..P-1] + C                 -> c_prime, b
//	mediator:  M[p]_j ~ 1 + X + M[p-1] + W[p] + X⊙W[p] + C    -> a, d, e, f
//
// ab = a⊙b, and adb chains a through the serial links d to b for p > 0.
type Regression struct {
	shape model.Shape
	solve solver
}

// New returns a Regression for datasets of the given shape.
func New(shape model.Shape, reg config.RegType) (*Regression, error) {
	solve, err := solverFor(reg)
	if err != nil {
		return nil, err
	}
	return &Regression{shape: shape, solve: solve}, nil
}

// Estimate implements Estimator.
func (r *Regression) Estimate(d model.Dataset) ([]model.Coefficients, error) {
	if err := r.check(d); err != nil {
		return nil, err
	}
	s := r.shape
	n := d.X.Len()
	out := model.NewCoefficients(s)

	total, err := r.solve(newDesign(n).vector(d.X).matrix(d.C).dense(), d.Y)
	if err != nil {
		return nil, apperrors.WrapError(err, "total effect model")
	}

	outcome := newDesign(n).vector(d.X)
	for p := range d.M {
		outcome.matrix(d.M[p])
	}
	full, err := r.solve(outcome.matrix(d.C).dense(), d.Y)
	if err != nil {
		return nil, apperrors.WrapError(err, "outcome model")
	}

	offset := 2
	for p := range out {
		c := &out[p]
		c.C[0] = total.AtVec(1)
		c.CPrime[0] = full.AtVec(1)
		for j := range c.B {
			c.B[j] = full.AtVec(offset + j)
		}
		offset += s.NMediators[p]

		if err := r.mediatorModels(d, p, c); err != nil {
			return nil, err
		}
		for j := range c.AB {
			c.AB[j] = c.A[j] * c.B[j]
		}
	}

	chainIndirect(s, out)
	return out, nil
}

// mediatorModels fits one regression per mediator column of stage p.
func (r *Regression) mediatorModels(d model.Dataset, p int, c *model.Coefficients) error {
	s := r.shape
	n := d.X.Len()

	dm := newDesign(n).vector(d.X)
	prev := 0
	if p > 0 {
		dm.matrix(d.M[p-1])
		prev = s.NMediators[p-1]
	}
	moderators := s.NModerators[p]
	dm.matrix(d.W[p]).interaction(d.X, d.W[p]).matrix(d.C)
	x := dm.dense()

	for j := 0; j < s.NMediators[p]; j++ {
		beta, err := r.solve(x, d.M[p].ColView(j))
		if err != nil {
			return apperrors.WrapError(err, "mediator model M[%d][%d]", p, j)
		}
		c.A[j] = beta.AtVec(1)
		idx := 2
		for k := 0; k < prev; k++ {
			c.D[j*prev+k] = beta.AtVec(idx + k)
		}
		idx += prev
		for k := 0; k < moderators; k++ {
			c.E[j*moderators+k] = beta.AtVec(idx + k)
			c.F[j*moderators+k] = beta.AtVec(idx + moderators + k)
		}
	}
	return nil
}

// chainIndirect fills adb for every stage after the first: the X effect is
// carried from stage 0 through each serial link d and multiplied by b.
func chainIndirect(s model.Shape, out []model.Coefficients) {
	carried := append([]float64(nil), out[0].A...)
	for p := 1; p < s.NPaths; p++ {
		prev := s.NMediators[p-1]
		next := make([]float64, s.NMediators[p])
		for j := range next {
			for k := 0; k < prev; k++ {
				next[j] += carried[k] * out[p].D[j*prev+k]
			}
			out[p].ADB[j] = next[j] * out[p].B[j]
		}
		carried = next
	}
}

// check verifies the dataset matches the estimator's shape.
func (r *Regression) check(d model.Dataset) error {
	s := r.shape
	if len(d.M) != s.NPaths || len(d.W) != s.NPaths {
		return apperrors.ShapeMismatchError{Operand: "M", Path: -1, Want: s.NPaths, Got: len(d.M)}
	}
	n := d.X.Len()
	if d.Y.Len() != n {
		return apperrors.ShapeMismatchError{Operand: "Y", Path: -1, Want: n, Got: d.Y.Len()}
	}
	for p := 0; p < s.NPaths; p++ {
		if err := checkBlock("M", p, d.M[p], n, s.NMediators[p]); err != nil {
			return err
		}
		if d.W[p] != nil || s.NModerators[p] > 0 {
			if err := checkBlock("W", p, d.W[p], n, s.NModerators[p]); err != nil {
				return err
			}
		}
	}
	if d.C != nil || s.NCovs > 0 {
		if err := checkBlock("C", -1, d.C, n, s.NCovs); err != nil {
			return err
		}
	}
	return nil
}

func checkBlock(name string, p int, m *mat.Dense, n, cols int) error {
	if m == nil {
		return apperrors.ShapeMismatchError{Operand: name, Path: p, Want: n, Got: 0}
	}
	r, c := m.Dims()
	if r != n {
		return apperrors.ShapeMismatchError{Operand: name, Path: p, Want: n, Got: r}
	}
	if c != cols {
		return apperrors.ShapeMismatchError{Operand: name + " columns", Path: p, Want: cols, Got: c}
	}
	return nil
}
