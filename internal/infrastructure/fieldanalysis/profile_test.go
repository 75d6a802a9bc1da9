package fieldanalysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// rectField поле единичной яркости в [x0, x1] x [y0, y1] на нулевом фоне.
func rectField(rows, cols, x0, x1, y0, y1 int) *mat.Dense {
	img := mat.NewDense(rows, cols, nil)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			img.Set(y, x, 1)
		}
	}
	return img
}

func TestProfileAnalyzer_RectangularField(t *testing.T) {
	a := NewProfileAnalyzer(5, 3)

	edges, err := a.Analyze(context.Background(), rectField(100, 120, 30, 89, 20, 79))
	require.NoError(t, err)
	require.InDelta(t, 29.5, edges.Left, 1e-9)
	require.InDelta(t, 89.5, edges.Right, 1e-9)
	require.InDelta(t, 19.5, edges.Top, 1e-9)
	require.InDelta(t, 79.5, edges.Bottom, 1e-9)
	require.InDelta(t, 59.5, edges.Center.X, 1e-9)
	require.InDelta(t, 49.5, edges.Center.Y, 1e-9)
}

func TestProfileAnalyzer_ShiftedField(t *testing.T) {
	a := NewProfileAnalyzer(2, 3)

	edges, err := a.Analyze(context.Background(), rectField(100, 100, 5, 40, 50, 95))
	require.NoError(t, err)
	require.InDelta(t, 4.5, edges.Left, 1e-9)
	require.InDelta(t, 40.5, edges.Right, 1e-9)
	require.InDelta(t, 49.5, edges.Top, 1e-9)
	require.InDelta(t, 95.5, edges.Bottom, 1e-9)
}

func TestProfileAnalyzer_NoField(t *testing.T) {
	a := NewProfileAnalyzer(5, 3)

	_, err := a.Analyze(context.Background(), mat.NewDense(50, 50, nil))
	require.ErrorIs(t, err, ErrNoCrossing)

	// Поле упирается в край снимка.
	_, err = a.Analyze(context.Background(), rectField(50, 50, 0, 49, 10, 40))
	require.ErrorIs(t, err, ErrNoCrossing)

	_, err = a.Analyze(context.Background(), nil)
	require.Error(t, err)
}

func TestInterpolate(t *testing.T) {
	require.InDelta(t, 2.25, interpolate([]float64{0, 0, 0.2, 1}, 2, 0.4), 1e-12)
	require.InDelta(t, 1.75, interpolate([]float64{1, 1, 0}, 1, 0.25), 1e-12)
}
