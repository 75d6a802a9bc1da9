package app

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/entity"
)

func TestAdaptFieldEdges(t *testing.T) {
	g, err := AdaptFieldEdges(entity.FieldEdges{
		Top: 10, Bottom: 90, Left: 20, Right: 80,
		Center: entity.Point{X: 50, Y: 50},
	})
	require.NoError(t, err)
	require.Equal(t, entity.FieldGeometry{
		Center: entity.Point{X: 50, Y: 50},
		Top:    -40,
		Bottom: 40,
		Left:   -30,
		Right:  30,
	}, g)
}

func TestAdaptFieldEdges_Invalid(t *testing.T) {
	cases := map[string]entity.FieldEdges{
		"crossed horizontal": {Top: 10, Bottom: 90, Left: 80, Right: 20},
		"crossed vertical":   {Top: 90, Bottom: 10, Left: 20, Right: 80},
		"degenerate":         {Top: 10, Bottom: 10, Left: 20, Right: 80},
		"nan":                {Top: math.NaN(), Bottom: 90, Left: 20, Right: 80},
		"inf center":         {Top: 10, Bottom: 90, Left: 20, Right: 80, Center: entity.Point{X: math.Inf(-1)}},
	}
	for name, edges := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := AdaptFieldEdges(edges)
			var inv *entity.InvalidFieldGeometryError
			require.True(t, errors.As(err, &inv))
			require.Equal(t, "radiation", inv.Source)
		})
	}
}

func TestRadiationAdapter_AnalyzerError(t *testing.T) {
	cause := errors.New("no penumbra found")
	analyzer := newFakeAnalyzer(entity.FieldEdges{})
	analyzer.err = cause

	_, err := NewRadiationAdapter(analyzer).Extract(context.Background(), mat.NewDense(3, 3, nil))
	require.ErrorIs(t, err, cause)
	require.Equal(t, entity.FailureInvalidGeometry, entity.FailureFrom(err).Kind)
}

func TestRadiationAdapter_NoAnalyzer(t *testing.T) {
	_, err := NewRadiationAdapter(nil).Extract(context.Background(), mat.NewDense(3, 3, nil))
	var inv *entity.InvalidFieldGeometryError
	require.True(t, errors.As(err, &inv))
}
