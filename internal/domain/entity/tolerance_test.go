package entity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToleranceSpec_Validate(t *testing.T) {
	require.NoError(t, DefaultTolerance().Validate())

	bad := []ToleranceSpec{
		{EdgeToleranceMM: 0, CenterToleranceMM: 1},
		{EdgeToleranceMM: 1, CenterToleranceMM: -1},
		{EdgeToleranceMM: math.NaN(), CenterToleranceMM: 1},
		{EdgeToleranceMM: 1, CenterToleranceMM: math.Inf(1)},
	}
	for _, tol := range bad {
		require.ErrorIs(t, tol.Validate(), ErrInvalidTolerance)
	}
}
