package pathest

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/agbru/medboot/internal/config"
	apperrors "github.com/agbru/medboot/internal/errors"
)

// ErrSingular is returned when a design matrix is rank deficient or has
// fewer observations than regressors.
var ErrSingular = errors.New("singular design matrix")

// solver fits y ≈ X·β in the least-squares sense.
type solver func(x *mat.Dense, y mat.Vector) (*mat.VecDense, error)

func solverFor(reg config.RegType) (solver, error) {
	switch reg {
	case config.RegOLS:
		return solveOLS, nil
	case config.RegQR:
		return solveQR, nil
	}
	return nil, apperrors.NewConfigError("reg_type %q is not one of [ols qr]", reg)
}

// solveOLS solves the normal equations X'X β = X'y with a Cholesky
// factorisation of X'X.
func solveOLS(x *mat.Dense, y mat.Vector) (*mat.VecDense, error) {
	n, k := x.Dims()
	if n < k {
		return nil, fmt.Errorf("%w: %d observations for %d regressors", ErrSingular, n, k)
	}
	var xtx mat.SymDense
	xtx.SymOuterK(1, x.T())

	var chol mat.Cholesky
	if ok := chol.Factorize(&xtx); !ok {
		return nil, fmt.Errorf("%w: X'X is not positive definite", ErrSingular)
	}
	var xty mat.VecDense
	xty.MulVec(x.T(), y)

	beta := mat.NewVecDense(k, nil)
	if err := chol.SolveVecTo(beta, &xty); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	return beta, nil
}

// solveQR solves X β ≈ y through a Householder QR factorisation of X, which
// avoids squaring the condition number.
func solveQR(x *mat.Dense, y mat.Vector) (*mat.VecDense, error) {
	n, k := x.Dims()
	if n < k {
		return nil, fmt.Errorf("%w: %d observations for %d regressors", ErrSingular, n, k)
	}
	var qr mat.QR
	qr.Factorize(x)

	beta := mat.NewVecDense(k, nil)
	if err := qr.SolveVecTo(beta, false, y); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	return beta, nil
}

// design assembles a regression matrix column by column. The intercept is
// always column 0.
type design struct {
	n    int
	cols [][]float64
}

func newDesign(n int) *design {
	ones := make([]float64, n)
	for i := range ones {
		ones[i] = 1
	}
	return &design{n: n, cols: [][]float64{ones}}
}

func (d *design) vector(v mat.Vector) *design {
	d.cols = append(d.cols, mat.Col(nil, 0, v))
	return d
}

func (d *design) matrix(m *mat.Dense) *design {
	if m == nil {
		return d
	}
	_, c := m.Dims()
	for j := 0; j < c; j++ {
		d.cols = append(d.cols, mat.Col(nil, j, m))
	}
	return d
}

// interaction appends the element-wise products v ⊙ m[:,j].
func (d *design) interaction(v mat.Vector, m *mat.Dense) *design {
	if m == nil {
		return d
	}
	_, c := m.Dims()
	for j := 0; j < c; j++ {
		col := make([]float64, d.n)
		for i := range col {
			col[i] = v.AtVec(i) * m.At(i, j)
		}
		d.cols = append(d.cols, col)
	}
	return d
}

func (d *design) dense() *mat.Dense {
	x := mat.NewDense(d.n, len(d.cols), nil)
	for j, col := range d.cols {
		x.SetCol(j, col)
	}
	return x
}
