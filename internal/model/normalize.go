package model

import (
	"gonum.org/v1/gonum/mat"

	apperrors "github.com/agbru/medboot/internal/errors"
)

// Normalize canonicalises raw input into a Model.
//
// X fixes the observation count n: a 1×n row vector is transposed. Every
// other operand is accepted with n rows, or with n columns in which case it
// is transposed. A single M or W matrix becomes a one-stage chain and a nil W
// means no stage is moderated. All operands are copied, so later changes to
// the caller's matrices do not reach the model.
//
// Row-count disagreements fail with ShapeMismatchError; structurally empty
// inputs fail with ValidationError.
func Normalize(raw RawInput) (*Model, error) {
	if raw.X == nil {
		return nil, apperrors.ValidationError{Field: "X", Message: "predictor is required"}
	}
	x, err := vector("X", raw.X, 0)
	if err != nil {
		return nil, err
	}
	n := x.Len()

	if raw.Y == nil {
		return nil, apperrors.ValidationError{Field: "Y", Message: "outcome is required"}
	}
	y, err := vector("Y", raw.Y, n)
	if err != nil {
		return nil, err
	}

	var mBlocks []mat.Matrix
	if raw.M != nil {
		mBlocks = raw.M.blocks()
	}
	if len(mBlocks) == 0 {
		return nil, apperrors.ValidationError{Field: "M", Message: "at least one mediator block is required"}
	}
	nPaths := len(mBlocks)

	var wBlocks []mat.Matrix
	if raw.W != nil {
		wBlocks = raw.W.blocks()
	}
	if wBlocks == nil {
		wBlocks = make([]mat.Matrix, nPaths)
	}
	if len(wBlocks) != nPaths {
		return nil, apperrors.ShapeMismatchError{Operand: "len(W)", Path: -1, Want: nPaths, Got: len(wBlocks)}
	}

	m := &Model{
		Shape: Shape{
			N:           n,
			NPaths:      nPaths,
			NMediators:  make([]int, nPaths),
			NModerators: make([]int, nPaths),
		},
		Data: Dataset{
			X: x,
			Y: y,
			M: make([]*mat.Dense, nPaths),
			W: make([]*mat.Dense, nPaths),
		},
	}

	for p := range mBlocks {
		if isEmpty(mBlocks[p]) {
			return nil, apperrors.ValidationError{Field: "M", Message: "mediator blocks must not be empty"}
		}
		mp, err := columns("M", p, mBlocks[p], n)
		if err != nil {
			return nil, err
		}
		m.Data.M[p] = mp
		_, m.NMediators[p] = mp.Dims()

		if isEmpty(wBlocks[p]) {
			continue
		}
		wp, err := columns("W", p, wBlocks[p], n)
		if err != nil {
			return nil, err
		}
		m.Data.W[p] = wp
		_, m.NModerators[p] = wp.Dims()
	}

	if !isEmpty(raw.C) {
		c, err := columns("C", -1, raw.C, n)
		if err != nil {
			return nil, err
		}
		m.Data.C = c
		_, m.NCovs = c.Dims()
	}
	return m, nil
}

// isEmpty reports whether an optional operand carries no data.
func isEmpty(a mat.Matrix) bool {
	switch t := a.(type) {
	case nil:
		return true
	case *mat.Dense:
		if t == nil {
			return true
		}
	case *mat.VecDense:
		if t == nil {
			return true
		}
	}
	if z, ok := a.(interface{ IsEmpty() bool }); ok && z.IsEmpty() {
		return true
	}
	r, c := a.Dims()
	return r == 0 || c == 0
}

// vector copies a row or column vector into a column VecDense. With n > 0 the
// length must equal n.
func vector(name string, a mat.Matrix, n int) (*mat.VecDense, error) {
	r, c := a.Dims()
	if r != 1 && c != 1 {
		return nil, apperrors.ValidationError{Field: name, Message: "must be a vector"}
	}
	length := max(r, c)
	if length == 0 {
		return nil, apperrors.ValidationError{Field: name, Message: "must not be empty"}
	}
	if n > 0 && length != n {
		return nil, apperrors.ShapeMismatchError{Operand: name, Path: -1, Want: n, Got: length}
	}
	v := mat.NewVecDense(length, nil)
	for i := 0; i < length; i++ {
		if c == 1 {
			v.SetVec(i, a.At(i, 0))
		} else {
			v.SetVec(i, a.At(0, i))
		}
	}
	return v, nil
}

// columns copies a into an n-row Dense, transposing when a is row oriented.
func columns(name string, path int, a mat.Matrix, n int) (*mat.Dense, error) {
	r, c := a.Dims()
	switch {
	case r == n:
		return mat.DenseCopyOf(a), nil
	case c == n:
		return mat.DenseCopyOf(a.T()), nil
	}
	return nil, apperrors.ShapeMismatchError{Operand: name, Path: path, Want: n, Got: r}
}
