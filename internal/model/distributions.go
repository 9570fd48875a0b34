package model

import (
	"math"

	"gonum.org/v1/gonum/mat"

	apperrors "github.com/agbru/medboot/internal/errors"
)

// PathDistribution is the PermutationDistributions record of one path: for
// every field an iterations × width matrix whose row i holds the
// coefficients of bootstrap iteration i.
type PathDistribution struct {
	fields [numFields]*mat.Dense
	widths [numFields]int
	rows   int
}

// Field returns the iterations × width matrix of f. Fields of width zero
// never occur with Shape.Width, so the result is never nil.
func (d *PathDistribution) Field(f Field) *mat.Dense { return d.fields[f] }

// Width returns the column count of field f.
func (d *PathDistribution) Width(f Field) int { return d.widths[f] }

// Rows returns the number of iterations the distribution holds.
func (d *PathDistribution) Rows() int { return d.rows }

// Column returns a copy of column j of field f, the empirical distribution of
// one coefficient.
func (d *PathDistribution) Column(f Field, j int) []float64 {
	return mat.Col(nil, j, d.fields[f])
}

// Distributions accumulates per-iteration coefficients for every path.
//
// Record writes disjoint rows, so concurrent calls for different iterations
// are safe without locking. Reads are only valid once every Record call has
// returned.
type Distributions struct {
	shape Shape
	paths []PathDistribution
}

// NewDistributions preallocates niter rows for every field of every path.
func NewDistributions(s Shape, niter int) *Distributions {
	d := &Distributions{shape: s, paths: make([]PathDistribution, s.NPaths)}
	for p := range d.paths {
		pd := &d.paths[p]
		pd.rows = niter
		for _, f := range Fields() {
			w := s.Width(p, f)
			pd.widths[f] = w
			pd.fields[f] = mat.NewDense(niter, w, nil)
		}
	}
	return d
}

// Path returns the distribution record of path p.
func (d *Distributions) Path(p int) *PathDistribution { return &d.paths[p] }

// NPaths returns the number of path records.
func (d *Distributions) NPaths() int { return len(d.paths) }

// Iterations returns the number of rows per field.
func (d *Distributions) Iterations() int {
	if len(d.paths) == 0 {
		return 0
	}
	return d.paths[0].rows
}

// Record writes the coefficients of iteration i into row i of every field.
// A record whose path count or field widths disagree with the shape fails
// with ShapeMismatchError and leaves the row untouched.
func (d *Distributions) Record(i int, coeffs []Coefficients) error {
	if err := d.shape.Check(coeffs); err != nil {
		return err
	}
	for p := range coeffs {
		for _, f := range Fields() {
			d.paths[p].fields[f].SetRow(i, coeffs[p].Get(f))
		}
	}
	return nil
}

// MarkMissing fills row i of every field with NaN.
func (d *Distributions) MarkMissing(i int) {
	for p := range d.paths {
		for _, f := range Fields() {
			m := d.paths[p].fields[f]
			_, c := m.Dims()
			for j := 0; j < c; j++ {
				m.Set(i, j, math.NaN())
			}
		}
	}
}

// Check verifies that coeffs has one record per path and that every field
// has the width Shape.Width assigns to it.
func (s Shape) Check(coeffs []Coefficients) error {
	if len(coeffs) != s.NPaths {
		return apperrors.ShapeMismatchError{Operand: "coefficients", Path: -1, Want: s.NPaths, Got: len(coeffs)}
	}
	for p := range coeffs {
		for _, f := range Fields() {
			if got, want := len(coeffs[p].Get(f)), s.Width(p, f); got != want {
				return apperrors.ShapeMismatchError{Operand: "coefficients." + f.String(), Path: p, Want: want, Got: got}
			}
		}
	}
	return nil
}
