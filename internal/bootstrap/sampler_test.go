package bootstrap

import (
	"math/rand/v2"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/agbru/medboot/internal/config"
	"github.com/agbru/medboot/internal/model"
	"github.com/agbru/medboot/internal/pathest/mocks"
)

// rowModel builds a model whose every operand encodes its row number, so a
// resample reveals which observation each row came from.
func rowModel(t *testing.T, n int) *model.Model {
	t.Helper()
	x := mat.NewVecDense(n, nil)
	y := mat.NewVecDense(n, nil)
	m0 := mat.NewDense(n, 2, nil)
	m1 := mat.NewDense(n, 1, nil)
	w := mat.NewDense(n, 1, nil)
	c := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		v := float64(i)
		x.SetVec(i, v)
		y.SetVec(i, 10*v)
		m0.SetRow(i, []float64{v, -v})
		m1.Set(i, 0, v+0.5)
		w.Set(i, 0, 2*v)
		c.SetRow(i, []float64{v, v})
	}
	m, err := model.Normalize(model.RawInput{X: x, Y: y, M: model.Chain{m0, m1}, W: model.Chain{w, nil}, C: c})
	require.NoError(t, err)
	return m
}

// TestIndices_PropertyBased checks that every drawn index lies in [0, n) and,
// in legacy mode, in [0, n-1).
func TestIndices_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("full range indices lie in [0, n)", prop.ForAll(
		func(n int, seed uint64) bool {
			idx := Indices(rand.New(rand.NewPCG(seed, 0)), n, config.IndexFull)
			if len(idx) != n {
				return false
			}
			for _, i := range idx {
				if i < 0 || i >= n {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 500),
		gen.UInt64(),
	))

	properties.Property("legacy indices never reach n-1", prop.ForAll(
		func(n int, seed uint64) bool {
			idx := Indices(rand.New(rand.NewPCG(seed, 0)), n, config.IndexLegacy)
			for _, i := range idx {
				if i < 0 || i >= n-1 {
					return false
				}
			}
			return len(idx) == n
		},
		gen.IntRange(2, 500),
		gen.UInt64(),
	))

	properties.TestingRun(t)
}

func TestIndices_Edges(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewPCG(1, 2))
	assert.Equal(t, []int{0}, Indices(rng, 1, config.IndexLegacy))
	assert.Equal(t, []int{0}, Indices(rng, 1, config.IndexFull))

	// With n = 2 the full range reaches the last observation eventually.
	seen := map[int]bool{}
	for i := 0; i < 50; i++ {
		for _, v := range Indices(rng, 2, config.IndexFull) {
			seen[v] = true
		}
	}
	assert.True(t, seen[0] && seen[1], "both observations should be drawn, got %v", seen)
}

func TestResample_Aligned(t *testing.T) {
	t.Parallel()
	m := rowModel(t, 8)
	idx := []int{3, 3, 0, 7, 5, 1, 1, 6}
	d := Resample(m, idx, false)

	for i, r := range idx {
		v := float64(r)
		assert.Equal(t, v, d.X.AtVec(i))
		assert.Equal(t, 10*v, d.Y.AtVec(i))
		assert.Equal(t, []float64{v, -v}, d.M[0].RawRowView(i))
		assert.Equal(t, v+0.5, d.M[1].At(i, 0))
		assert.Equal(t, 2*v, d.W[0].At(i, 0))
	}
	assert.Nil(t, d.W[1], "unmoderated stages stay nil")
	assert.Same(t, m.Data.C, d.C, "covariates are not resampled by default")
	assert.Equal(t, 0.0, m.Data.X.AtVec(0), "the model must not be modified")
}

func TestResample_Covariates(t *testing.T) {
	t.Parallel()
	m := rowModel(t, 5)
	idx := []int{4, 4, 4, 0, 2}
	d := Resample(m, idx, true)
	require.NotSame(t, m.Data.C, d.C)
	for i, r := range idx {
		assert.Equal(t, []float64{float64(r), float64(r)}, d.C.RawRowView(i))
	}
}

func TestSampler_DrawIsReproducible(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	m := rowModel(t, 20)

	var got [][]float64
	est := mocks.NewMockEstimator(ctrl)
	est.EXPECT().Estimate(gomock.Any()).DoAndReturn(func(d model.Dataset) ([]model.Coefficients, error) {
		got = append(got, mat.Col(nil, 0, d.X))
		return model.NewCoefficients(m.Shape), nil
	}).Times(3)

	var observed []int
	s := NewSampler(m, est, config.DefaultOptions(), 99, WithIndexObserver(func(i int, idx []int) {
		observed = append(observed, i)
		for _, v := range idx {
			assert.True(t, v >= 0 && v < m.N)
		}
	}))

	_, err := s.Draw(4)
	require.NoError(t, err)
	_, err = s.Draw(5)
	require.NoError(t, err)
	_, err = s.Draw(4)
	require.NoError(t, err)

	assert.Equal(t, []int{4, 5, 4}, observed)
	assert.Equal(t, got[0], got[2], "iteration 4 draws the same resample every time")
	assert.NotEqual(t, got[0], got[1], "distinct iterations draw distinct resamples")
}

func TestSampler_SeedChangesStream(t *testing.T) {
	t.Parallel()
	m := rowModel(t, 30)
	a := NewSampler(m, nil, config.DefaultOptions(), 1)
	b := NewSampler(m, nil, config.DefaultOptions(), 2)
	assert.NotEqual(t,
		Indices(a.Rand(0), m.N, config.IndexFull),
		Indices(b.Rand(0), m.N, config.IndexFull))
	assert.Equal(t,
		Indices(a.Rand(3), m.N, config.IndexFull),
		Indices(NewSampler(m, nil, config.DefaultOptions(), 1).Rand(3), m.N, config.IndexFull))
}
