package model

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"gonum.org/v1/gonum/mat"

	apperrors "github.com/agbru/medboot/internal/errors"
)

// seq returns an r×c Dense filled with 0, 1, 2, ... in row-major order.
func seq(r, c int) *mat.Dense {
	data := make([]float64, r*c)
	for i := range data {
		data[i] = float64(i)
	}
	return mat.NewDense(r, c, data)
}

func TestNormalize_Counts(t *testing.T) {
	t.Parallel()
	n := 20
	raw := RawInput{
		X: seq(n, 1),
		Y: seq(n, 1),
		M: Chain{seq(n, 2), seq(n, 3), seq(n, 1)},
		W: Chain{seq(n, 2), nil, nil},
		C: seq(n, 4),
	}
	m, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if m.N != n || m.NPaths != 3 || m.NCovs != 4 {
		t.Errorf("counts = (N %d, paths %d, covs %d), want (20, 3, 4)", m.N, m.NPaths, m.NCovs)
	}
	wantMed := []int{2, 3, 1}
	wantMod := []int{2, 0, 0}
	for p := range wantMed {
		if m.NMediators[p] != wantMed[p] || m.NModerators[p] != wantMod[p] {
			t.Errorf("path %d: mediators %d moderators %d, want %d %d", p, m.NMediators[p], m.NModerators[p], wantMed[p], wantMod[p])
		}
	}
	if m.Data.W[1] != nil || m.Data.W[2] != nil {
		t.Error("unmoderated stages should have nil W")
	}
	if !m.Moderated(0) || m.Moderated(1) {
		t.Error("Moderated should follow NModerators")
	}
}

func TestNormalize_SingleBlocksAndOrientation(t *testing.T) {
	t.Parallel()
	n := 6
	raw := RawInput{
		X: seq(1, n), // row vector
		Y: mat.NewVecDense(n, nil),
		M: Single{seq(2, n)}, // 2 mediators, observation per column
		W: Single{seq(n, 1)},
		C: seq(3, n), // 3 covariates, transposed
	}
	m, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if m.N != n || m.NPaths != 1 || m.NMediators[0] != 2 || m.NModerators[0] != 1 || m.NCovs != 3 {
		t.Fatalf("unexpected shape %+v", m.Shape)
	}
	if got := m.Data.X.AtVec(4); got != 4 {
		t.Errorf("X[4] = %v, want 4", got)
	}
	// seq(2, n) at (1, 3) is 1*n+3; after transposition it sits at (3, 1).
	if got := m.Data.M[0].At(3, 1); got != float64(n+3) {
		t.Errorf("M[0](3,1) = %v, want %v", got, n+3)
	}
	if r, c := m.Data.C.Dims(); r != n || c != 3 {
		t.Errorf("C dims = %dx%d, want %dx3", r, c, n)
	}
}

func TestNormalize_CopiesInput(t *testing.T) {
	t.Parallel()
	x := seq(5, 1)
	mBlock := seq(5, 1)
	m, err := Normalize(RawInput{X: x, Y: seq(5, 1), M: Single{mBlock}})
	if err != nil {
		t.Fatal(err)
	}
	x.Set(0, 0, 99)
	mBlock.Set(0, 0, 99)
	if m.Data.X.AtVec(0) != 0 || m.Data.M[0].At(0, 0) != 0 {
		t.Error("model should not alias caller matrices")
	}
	if m.Data.C != nil || m.NCovs != 0 {
		t.Error("absent covariates should give a nil C")
	}
}

func TestNormalize_Errors(t *testing.T) {
	t.Parallel()
	var nilDense *mat.Dense
	tests := []struct {
		name     string
		raw      RawInput
		shape    bool
		operand  string
		wantPath int
	}{
		{name: "nil X", raw: RawInput{Y: seq(5, 1), M: Single{seq(5, 1)}}},
		{name: "nil Y", raw: RawInput{X: seq(5, 1), M: Single{seq(5, 1)}}},
		{name: "matrix X", raw: RawInput{X: seq(5, 2), Y: seq(5, 1), M: Single{seq(5, 1)}}},
		{name: "no mediators", raw: RawInput{X: seq(5, 1), Y: seq(5, 1)}},
		{name: "empty chain", raw: RawInput{X: seq(5, 1), Y: seq(5, 1), M: Chain{}}},
		{name: "typed nil mediator", raw: RawInput{X: seq(5, 1), Y: seq(5, 1), M: Chain{nilDense}}},
		{name: "short Y", raw: RawInput{X: seq(5, 1), Y: seq(4, 1), M: Single{seq(5, 1)}}, shape: true, operand: "Y", wantPath: -1},
		{name: "short mediator", raw: RawInput{X: seq(5, 1), Y: seq(5, 1), M: Chain{seq(5, 1), seq(4, 2)}}, shape: true, operand: "M", wantPath: 1},
		{name: "short moderator", raw: RawInput{X: seq(5, 1), Y: seq(5, 1), M: Single{seq(5, 1)}, W: Single{seq(3, 2)}}, shape: true, operand: "W", wantPath: 0},
		{name: "W chain length", raw: RawInput{X: seq(5, 1), Y: seq(5, 1), M: Chain{seq(5, 1), seq(5, 1)}, W: Chain{seq(5, 1)}}, shape: true, operand: "len(W)", wantPath: -1},
		{name: "short covariates", raw: RawInput{X: seq(5, 1), Y: seq(5, 1), M: Single{seq(5, 1)}, C: seq(4, 2)}, shape: true, operand: "C", wantPath: -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Normalize(tt.raw)
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.shape {
				var shapeErr apperrors.ShapeMismatchError
				if !errors.As(err, &shapeErr) {
					t.Fatalf("expected ShapeMismatchError, got %v", err)
				}
				if shapeErr.Operand != tt.operand || shapeErr.Path != tt.wantPath {
					t.Errorf("got %+v, want operand %s path %d", shapeErr, tt.operand, tt.wantPath)
				}
				return
			}
			var valErr apperrors.ValidationError
			if !errors.As(err, &valErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

// TestNormalize_PropertyBased checks the derived counts for arbitrary chain
// layouts.
func TestNormalize_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("counts follow the operand dimensions", prop.ForAll(
		func(n int, widths []int, moderated int) bool {
			chain := make(Chain, len(widths))
			mods := make(Chain, len(widths))
			for p, w := range widths {
				chain[p] = seq(n, w)
				if p == moderated%len(widths) {
					mods[p] = seq(w+1, n)
				}
			}
			m, err := Normalize(RawInput{X: seq(n, 1), Y: seq(1, n), M: chain, W: mods})
			if err != nil {
				t.Logf("Normalize: %v", err)
				return false
			}
			if m.N != n || m.NPaths != len(widths) {
				return false
			}
			for p, w := range widths {
				wantMod := 0
				if p == moderated%len(widths) {
					wantMod = w + 1
				}
				if m.NMediators[p] != w || m.NModerators[p] != wantMod {
					return false
				}
			}
			return true
		},
		gen.IntRange(8, 40),
		gen.SliceOfN(3, gen.IntRange(1, 4)),
		gen.IntRange(0, 10),
	))

	properties.TestingRun(t)
}
