// Package simulate generates synthetic serial mediation datasets with known
// path coefficients. The medboot binary uses it in place of reading data and
// the tests use it to check recovered coefficients.
package simulate

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/agbru/medboot/internal/model"
)

// Params describes the generating model.
//
//	M[0]_j = A·X + E·W_k + F·X·W_k + G·ΣC + ε
//	M[p]_j = A·X + D·mean(M[p-1]) + G·ΣC + ε      (p > 0)
//	Y      = CPrime·X + B·Σ M + G·ΣC + ε
type Params struct {
	N          int
	Stages     int
	Mediators  int
	Moderators int
	Covariates int

	A, B, CPrime, D, E, F, G float64
	// Noise is the residual standard deviation.
	Noise float64
	Seed  uint64
}

// DefaultParams returns a moderately strong single-stage mediation.
func DefaultParams() Params {
	return Params{
		N:          100,
		Stages:     1,
		Mediators:  1,
		Covariates: 2,
		A:          0.5,
		B:          0.4,
		CPrime:     0.2,
		D:          0.6,
		E:          0.3,
		F:          0.25,
		G:          0.1,
		Noise:      1,
		Seed:       1,
	}
}

// Generate draws one dataset from p.
func Generate(p Params) model.RawInput {
	src := rand.NewPCG(p.Seed, p.Seed^0x9e3779b97f4a7c15)
	unit := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	noise := distuv.Normal{Mu: 0, Sigma: p.Noise, Src: src}
	if p.Noise == 0 {
		noise.Sigma = 1e-12
	}

	x := draw(unit, p.N, 1)
	c := draw(unit, p.N, p.Covariates)
	covEffect := make([]float64, p.N)
	for i := range covEffect {
		for l := 0; l < p.Covariates; l++ {
			covEffect[i] += p.G * c.At(i, l)
		}
	}

	var w *mat.Dense
	if p.Moderators > 0 {
		w = draw(unit, p.N, p.Moderators)
	}

	ms := make(model.Chain, p.Stages)
	mediated := make([]float64, p.N)
	var prev *mat.Dense
	for s := 0; s < p.Stages; s++ {
		m := mat.NewDense(p.N, p.Mediators, nil)
		for i := 0; i < p.N; i++ {
			xi := x.At(i, 0)
			base := p.A*xi + covEffect[i]
			if s == 0 && w != nil {
				for k := 0; k < p.Moderators; k++ {
					base += p.E*w.At(i, k) + p.F*xi*w.At(i, k)
				}
			}
			if prev != nil {
				base += p.D * rowMean(prev, i)
			}
			for j := 0; j < p.Mediators; j++ {
				v := base + noise.Rand()
				m.Set(i, j, v)
				mediated[i] += p.B * v
			}
		}
		ms[s] = m
		prev = m
	}

	y := mat.NewDense(p.N, 1, nil)
	for i := 0; i < p.N; i++ {
		y.Set(i, 0, p.CPrime*x.At(i, 0)+mediated[i]+covEffect[i]+noise.Rand())
	}

	raw := model.RawInput{X: x, Y: y, M: ms}
	if w != nil {
		ws := make(model.Chain, p.Stages)
		ws[0] = w
		raw.W = ws
	}
	if p.Covariates > 0 {
		raw.C = c
	}
	return raw
}

func draw(d distuv.Normal, rows, cols int) *mat.Dense {
	if cols == 0 {
		return nil
	}
	m := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			m.Set(i, j, d.Rand())
		}
	}
	return m
}

func rowMean(m *mat.Dense, i int) float64 {
	row := m.RawRowView(i)
	var sum float64
	for _, v := range row {
		sum += v
	}
	return sum / float64(len(row))
}
