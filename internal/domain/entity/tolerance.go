package entity

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidTolerance ошибка конфигурации допусков, останавливает весь прогон
var ErrInvalidTolerance = errors.New("invalid tolerance spec")

// ToleranceSpec допуски совпадения полей в мм
type ToleranceSpec struct {
	EdgeToleranceMM   float64 `json:"edge_tolerance_mm" yaml:"edge_mm"`
	CenterToleranceMM float64 `json:"center_tolerance_mm" yaml:"center_mm"`
}

// DefaultTolerance допуски 2 мм по краю и по центру.
func DefaultTolerance() ToleranceSpec {
	return ToleranceSpec{EdgeToleranceMM: 2.0, CenterToleranceMM: 2.0}
}

// Validate проверяет, что допуски положительные и конечные.
func (t ToleranceSpec) Validate() error {
	if !positive(t.EdgeToleranceMM) {
		return fmt.Errorf("%w: edge tolerance must be positive, got %v", ErrInvalidTolerance, t.EdgeToleranceMM)
	}
	if !positive(t.CenterToleranceMM) {
		return fmt.Errorf("%w: center tolerance must be positive, got %v", ErrInvalidTolerance, t.CenterToleranceMM)
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1) && !math.IsNaN(v)
}
