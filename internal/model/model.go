package model

import "gonum.org/v1/gonum/mat"

// Blocks is a mediator or moderator argument: either a single matrix or an
// ordered chain of matrices, one per serial stage.
type Blocks interface {
	blocks() []mat.Matrix
}

// Single is a bare matrix; Normalize wraps it into a one-stage chain.
type Single struct {
	mat.Matrix
}

func (s Single) blocks() []mat.Matrix {
	if s.Matrix == nil {
		return nil
	}
	return []mat.Matrix{s.Matrix}
}

// Chain is an ordered sequence of stage matrices. A nil entry in a moderator
// chain means the stage is not moderated.
type Chain []mat.Matrix

func (c Chain) blocks() []mat.Matrix { return c }

// RawInput is the caller-facing input before normalisation.
type RawInput struct {
	X, Y mat.Matrix
	M    Blocks
	W    Blocks
	C    mat.Matrix
}

// Shape holds the counts derived from a normalised model. It fixes the width
// of every coefficient field.
type Shape struct {
	// N is the number of observations.
	N int
	// NPaths is the number of serial mediator stages.
	NPaths int
	// NCovs is the number of covariate columns.
	NCovs int
	// NMediators[p] is the column count of M[p].
	NMediators []int
	// NModerators[p] is the column count of W[p], or 0.
	NModerators []int
}

// Dataset is one (X, Y, M, W, C) tuple handed to the path estimator: the
// original data or one bootstrap resample of it. All operands are column
// oriented with N rows.
type Dataset struct {
	X, Y *mat.VecDense
	M    []*mat.Dense
	// W[p] is nil when stage p is not moderated.
	W []*mat.Dense
	// C may have zero columns, in which case it is nil.
	C *mat.Dense
}

// Model is the normalised, immutable input of a bootstrap run.
type Model struct {
	Shape
	Data Dataset
}

// Field names a coefficient field.
type Field int

// Coefficient fields, in record order.
const (
	FieldA Field = iota
	FieldB
	FieldCPrime
	FieldC
	FieldAB
	FieldD
	FieldADB
	FieldE
	FieldF
	numFields
)

var fieldNames = [numFields]string{"a", "b", "c_prime", "c", "ab", "d", "adb", "e", "f"}

// Fields lists every coefficient field in record order.
func Fields() []Field {
	fs := make([]Field, numFields)
	for i := range fs {
		fs[i] = Field(i)
	}
	return fs
}

// String returns the conventional lower-case field name.
func (f Field) String() string {
	if f < 0 || f >= numFields {
		return "unknown"
	}
	return fieldNames[f]
}

// Width returns the number of columns field f has on path p.
func (s Shape) Width(p int, f Field) int {
	mediators := s.NMediators[p]
	switch f {
	case FieldCPrime, FieldC:
		return 1
	case FieldD:
		prev := 1
		if p > 0 {
			prev = s.NMediators[p-1]
		}
		return mediators * prev
	case FieldE, FieldF:
		return mediators * max(s.NModerators[p], 1)
	default:
		return mediators
	}
}

// Moderated reports whether path p has a moderator block.
func (s Shape) Moderated(p int) bool {
	return s.NModerators[p] > 0
}

// Coefficients is the PathCoefficients record of one path.
type Coefficients struct {
	A, B, CPrime, C, AB, D, ADB, E, F []float64
}

// Get returns the slice backing field f.
func (c *Coefficients) Get(f Field) []float64 {
	switch f {
	case FieldA:
		return c.A
	case FieldB:
		return c.B
	case FieldCPrime:
		return c.CPrime
	case FieldC:
		return c.C
	case FieldAB:
		return c.AB
	case FieldD:
		return c.D
	case FieldADB:
		return c.ADB
	case FieldE:
		return c.E
	case FieldF:
		return c.F
	}
	return nil
}

// Set replaces field f.
func (c *Coefficients) Set(f Field, v []float64) {
	switch f {
	case FieldA:
		c.A = v
	case FieldB:
		c.B = v
	case FieldCPrime:
		c.CPrime = v
	case FieldC:
		c.C = v
	case FieldAB:
		c.AB = v
	case FieldD:
		c.D = v
	case FieldADB:
		c.ADB = v
	case FieldE:
		c.E = v
	case FieldF:
		c.F = v
	}
}

// NewCoefficients returns zero-filled records for every path of s.
func NewCoefficients(s Shape) []Coefficients {
	out := make([]Coefficients, s.NPaths)
	for p := range out {
		for _, f := range Fields() {
			out[p].Set(f, make([]float64, s.Width(p, f)))
		}
	}
	return out
}
