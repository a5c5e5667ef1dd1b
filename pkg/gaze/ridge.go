package gaze

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ridgeModel maps feature vectors to screen points with two independent
// ridge regressions (one per axis) sharing a bias column.
type ridgeModel struct {
	lambda  float64
	dim     int        // feature dimension, excluding bias
	weights *mat.Dense // (dim+1) x 2, last row is the bias
}

func newRidgeModel(lambda float64) *ridgeModel {
	return &ridgeModel{lambda: lambda}
}

func (m *ridgeModel) trained() bool {
	return m.weights != nil
}

// fit solves the regularized normal equations (XᵀX + λI)W = XᵀY.
// The bias term is left unregularized.
func (m *ridgeModel) fit(features []Features, targets []Point) error {
	n := len(features)
	if n == 0 {
		return ErrNoSamples
	}
	if len(targets) != n {
		return fmt.Errorf("%d features but %d targets: %w", n, len(targets), ErrDimensionMismatch)
	}
	dim := len(features[0])
	if dim == 0 {
		return ErrNoSamples
	}

	X := mat.NewDense(n, dim+1, nil)
	Y := mat.NewDense(n, 2, nil)
	for i, f := range features {
		if len(f) != dim {
			return fmt.Errorf("sample %d has dimension %d, want %d: %w", i, len(f), dim, ErrDimensionMismatch)
		}
		for j, v := range f {
			X.Set(i, j, v)
		}
		X.Set(i, dim, 1) // bias
		Y.Set(i, 0, targets[i].X)
		Y.Set(i, 1, targets[i].Y)
	}

	var gram mat.Dense
	gram.Mul(X.T(), X)
	for j := 0; j < dim; j++ {
		gram.Set(j, j, gram.At(j, j)+m.lambda)
	}

	var rhs mat.Dense
	rhs.Mul(X.T(), Y)

	var w mat.Dense
	if err := w.Solve(&gram, &rhs); err != nil {
		return fmt.Errorf("solve ridge system: %w", err)
	}

	m.dim = dim
	m.weights = &w
	return nil
}

func (m *ridgeModel) predict(f Features) (Point, error) {
	if !m.trained() {
		return Point{}, ErrNotTrained
	}
	if len(f) != m.dim {
		return Point{}, fmt.Errorf("feature dimension %d, model expects %d: %w", len(f), m.dim, ErrDimensionMismatch)
	}

	var x, y float64
	for j, v := range f {
		x += v * m.weights.At(j, 0)
		y += v * m.weights.At(j, 1)
	}
	x += m.weights.At(m.dim, 0)
	y += m.weights.At(m.dim, 1)
	return Point{X: x, Y: y}, nil
}

// export flattens the weight matrix for artifact serialization.
func (m *ridgeModel) export() [][]float64 {
	if !m.trained() {
		return nil
	}
	rows := m.dim + 1
	out := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		out[i] = []float64{m.weights.At(i, 0), m.weights.At(i, 1)}
	}
	return out
}

// restore rebuilds the weight matrix from its serialized form.
func (m *ridgeModel) restore(weights [][]float64) error {
	if len(weights) < 2 {
		return fmt.Errorf("artifact has %d weight rows: %w", len(weights), ErrDimensionMismatch)
	}
	rows := len(weights)
	w := mat.NewDense(rows, 2, nil)
	for i, row := range weights {
		if len(row) != 2 {
			return fmt.Errorf("artifact weight row %d has %d columns: %w", i, len(row), ErrDimensionMismatch)
		}
		w.Set(i, 0, row[0])
		w.Set(i, 1, row[1])
	}
	m.dim = rows - 1
	m.weights = w
	return nil
}
