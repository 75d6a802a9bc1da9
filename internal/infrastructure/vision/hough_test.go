package vision

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/entity"
)

// diskImage рисует яркие диски радиуса r на фоне 0.2.
func diskImage(size int, r float64, centers ...entity.Point) *mat.Dense {
	img := mat.NewDense(size, size, nil)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			v := 0.2
			for _, c := range centers {
				if math.Hypot(float64(x)-c.X, float64(y)-c.Y) <= r {
					v = 1.0
				}
			}
			img.Set(y, x, v)
		}
	}
	return img
}

func testSearch() entity.MarkerSearch {
	return entity.MarkerSearch{
		MinRadius:     6.8,
		MaxRadius:     9.2,
		MinSeparation: 14.4,
		Threshold:     1.0,
		Expected:      4,
	}
}

func nearest(markers []entity.MarkerPoint, p entity.Point) float64 {
	best := math.Inf(1)
	for _, m := range markers {
		best = math.Min(best, math.Hypot(m.X-p.X, m.Y-p.Y))
	}
	return best
}

func TestHoughLocalizer_FindsFourMarkers(t *testing.T) {
	centers := []entity.Point{{X: 100, Y: 40}, {X: 100, Y: 160}, {X: 40, Y: 100}, {X: 160, Y: 100}}
	img := diskImage(200, 8, centers...)

	markers, err := NewHoughLocalizer(5, 0.1).Locate(context.Background(), img, testSearch())
	require.NoError(t, err)
	require.Len(t, markers, 4)
	for _, c := range centers {
		require.Less(t, nearest(markers, c), 1.5, "marker near %v", c)
	}
	for i := 1; i < len(markers); i++ {
		require.GreaterOrEqual(t, markers[i-1].Score, markers[i].Score)
	}
}

func TestHoughLocalizer_MissingMarker(t *testing.T) {
	img := diskImage(200, 8, entity.Point{X: 100, Y: 40}, entity.Point{X: 40, Y: 100}, entity.Point{X: 160, Y: 100})

	markers, err := NewHoughLocalizer(5, 0.1).Locate(context.Background(), img, testSearch())
	require.NoError(t, err)
	require.Len(t, markers, 3)
}

func TestHoughLocalizer_UniformImage(t *testing.T) {
	img := mat.NewDense(50, 50, nil)
	for i := 0; i < 50; i++ {
		for j := 0; j < 50; j++ {
			img.Set(i, j, 0.5)
		}
	}

	markers, err := NewHoughLocalizer(5, 0.1).Locate(context.Background(), img, testSearch())
	require.NoError(t, err)
	require.Empty(t, markers)
}

func TestHoughLocalizer_InvalidInput(t *testing.T) {
	l := NewHoughLocalizer(5, 0.1)
	ctx := context.Background()

	_, err := l.Locate(ctx, nil, testSearch())
	require.Error(t, err)

	_, err = l.Locate(ctx, mat.NewDense(2, 2, nil), testSearch())
	require.Error(t, err)

	bad := testSearch()
	bad.MinRadius, bad.MaxRadius = 10, 5
	_, err = l.Locate(ctx, diskImage(40, 5, entity.Point{X: 20, Y: 20}), bad)
	require.Error(t, err)
}

func TestHoughLocalizer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHoughLocalizer(5, 0.1).Locate(ctx, diskImage(60, 8, entity.Point{X: 30, Y: 30}), testSearch())
	require.ErrorIs(t, err, context.Canceled)
}

func TestGaussianKernel_Normalized(t *testing.T) {
	k := gaussianKernel(5, 0)
	require.Len(t, k, 5)

	var sum float64
	for _, v := range k {
		sum += v
	}
	require.InDelta(t, 1.0, sum, 1e-12)
	require.Equal(t, k[0], k[4])
	require.Greater(t, k[2], k[1])
}

func TestHoughLocalizer_AdjacentRadiiSuppressed(t *testing.T) {
	center := entity.Point{X: 60, Y: 60}
	img := diskImage(120, 8, center)
	search := testSearch()
	search.MinSeparation = 0

	markers, err := NewHoughLocalizer(5, 0.1).Locate(context.Background(), img, search)
	require.NoError(t, err)

	near := 0
	for _, m := range markers {
		if math.Hypot(m.X-center.X, m.Y-center.Y) < 3 {
			near++
		}
	}
	rMin, rMax := radiusBounds(search)
	require.GreaterOrEqual(t, near, 1)
	require.Less(t, near, rMax-rMin+1)
}

func TestNotBelow(t *testing.T) {
	v := make([]float64, 9)
	v[8] = 2

	require.True(t, notBelow(nil, 3, 1, 1, 1))
	require.True(t, notBelow(v, 3, 1, 1, 2))
	require.False(t, notBelow(v, 3, 1, 1, 1.5))
}
