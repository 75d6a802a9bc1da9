package app

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/entity"
	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/port"
)

// RadiationAdapter вызывает анализатор поля и приводит ответ к FieldGeometry.
type RadiationAdapter struct {
	analyzer port.FieldAnalyzer
}

// NewRadiationAdapter создаёт адаптер поверх анализатора.
func NewRadiationAdapter(analyzer port.FieldAnalyzer) *RadiationAdapter {
	return &RadiationAdapter{analyzer: analyzer}
}

// Extract возвращает радиационное поле в пикселях.
func (a *RadiationAdapter) Extract(ctx context.Context, pixels *mat.Dense) (entity.FieldGeometry, error) {
	if a.analyzer == nil {
		return entity.FieldGeometry{}, &entity.InvalidFieldGeometryError{
			Source: "radiation",
			Reason: "field analysis failed",
			Err:    errors.New("field analyzer is not configured"),
		}
	}

	edges, err := a.analyzer.Analyze(ctx, pixels)
	if err != nil {
		return entity.FieldGeometry{}, &entity.InvalidFieldGeometryError{Source: "radiation", Reason: "field analysis failed", Err: err}
	}
	return AdaptFieldEdges(edges)
}

// AdaptFieldEdges проверяет ответ анализатора и пересчитывает края в смещения от центра.
func AdaptFieldEdges(e entity.FieldEdges) (entity.FieldGeometry, error) {
	values := []struct {
		name string
		v    float64
	}{
		{"top", e.Top}, {"bottom", e.Bottom}, {"left", e.Left}, {"right", e.Right},
		{"center x", e.Center.X}, {"center y", e.Center.Y},
	}
	for _, val := range values {
		if math.IsNaN(val.v) || math.IsInf(val.v, 0) {
			return entity.FieldGeometry{}, &entity.InvalidFieldGeometryError{Source: "radiation", Reason: val.name + " is not finite"}
		}
	}

	if e.Left >= e.Right {
		return entity.FieldGeometry{}, &entity.InvalidFieldGeometryError{
			Source: "radiation",
			Reason: fmt.Sprintf("left edge %.2f is not left of right edge %.2f", e.Left, e.Right),
		}
	}
	if e.Top >= e.Bottom {
		return entity.FieldGeometry{}, &entity.InvalidFieldGeometryError{
			Source: "radiation",
			Reason: fmt.Sprintf("top edge %.2f is not above bottom edge %.2f", e.Top, e.Bottom),
		}
	}

	return entity.FieldGeometry{
		Center: e.Center,
		Top:    e.Top - e.Center.Y,
		Bottom: e.Bottom - e.Center.Y,
		Left:   e.Left - e.Center.X,
		Right:  e.Right - e.Center.X,
	}, nil
}
