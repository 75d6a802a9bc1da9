package app

import (
	"fmt"
	"math"

	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/entity"
)

// Normalize переводит геометрию из пикселей в мм на плоскости изоцентра:
// мм = пиксели × размер пикселя × SAD/SID.
func Normalize(g entity.FieldGeometry, spacing entity.Spacing, sid, sad float64) (entity.FieldGeometry, error) {
	params := []struct {
		name string
		v    float64
	}{
		{"row spacing", spacing.Row}, {"column spacing", spacing.Col}, {"SID", sid}, {"SAD", sad},
	}
	for _, p := range params {
		if !(p.v > 0) || math.IsInf(p.v, 0) {
			return entity.FieldGeometry{}, &entity.InvalidFieldGeometryError{
				Source: "scale",
				Reason: fmt.Sprintf("%s must be positive and finite, got %v", p.name, p.v),
			}
		}
	}
	if !g.Finite() {
		return entity.FieldGeometry{}, &entity.InvalidFieldGeometryError{Source: "scale", Reason: "geometry is not finite"}
	}

	ratio := sad / sid
	fx := spacing.Col * ratio
	fy := spacing.Row * ratio

	out := entity.FieldGeometry{
		Center: entity.Point{X: g.Center.X * fx, Y: g.Center.Y * fy},
		Top:    g.Top * fy,
		Bottom: g.Bottom * fy,
		Left:   g.Left * fx,
		Right:  g.Right * fx,
	}
	if !out.Finite() {
		return entity.FieldGeometry{}, &entity.InvalidFieldGeometryError{Source: "scale", Reason: "scaled geometry overflowed"}
	}
	return out, nil
}
