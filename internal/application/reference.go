package app

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/entity"
)

// minMarkers по одному маркеру на каждую сторону светового поля
const minMarkers = 4

// Inset смещение края поля наружу от маркеров, в пикселях
type Inset struct {
	X float64
	Y float64
}

// ReferenceBuilder строит геометрию светового поля по найденным маркерам.
type ReferenceBuilder struct {
	AmbiguityWindowDeg float64 // ширина зоны неоднозначности около диагоналей
}

// NewReferenceBuilder создаёт построитель с заданным окном неоднозначности.
func NewReferenceBuilder(ambiguityWindowDeg float64) *ReferenceBuilder {
	return &ReferenceBuilder{AmbiguityWindowDeg: ambiguityWindowDeg}
}

// ClassifyMarker относит маркер к стороне поля по его углу относительно центра.
// Второе значение true, если угол ближе окна к диагонали, т.е. к границе сторон.
func ClassifyMarker(m entity.MarkerPoint, center entity.Point, windowDeg float64) (entity.EdgeRole, bool) {
	dx, dy := m.X-center.X, m.Y-center.Y
	if math.Hypot(dx, dy) < 1e-9 {
		return entity.EdgeRight, true
	}

	// Ось y направлена вниз, поэтому +90° — нижний край.
	angle := math.Atan2(dy, dx) * 180 / math.Pi

	var role entity.EdgeRole
	switch {
	case angle >= -45 && angle < 45:
		role = entity.EdgeRight
	case angle >= 45 && angle < 135:
		role = entity.EdgeBottom
	case angle >= -135 && angle < -45:
		role = entity.EdgeTop
	default:
		role = entity.EdgeLeft
	}

	fromDiagonal := math.Abs(math.Mod(math.Abs(angle), 90) - 45)
	return role, fromDiagonal < windowDeg
}

// Build классифицирует маркеры и возвращает световое поле в пикселях.
func (b *ReferenceBuilder) Build(markers []entity.MarkerPoint, center entity.Point, inset Inset) (entity.FieldGeometry, error) {
	if len(markers) < minMarkers {
		return entity.FieldGeometry{}, &entity.MarkerDetectionError{Found: len(markers), Expected: minMarkers}
	}

	var (
		groups    [4][]entity.MarkerPoint
		ambiguous [4]bool
	)
	for _, m := range markers {
		role, amb := ClassifyMarker(m, center, b.AmbiguityWindowDeg)
		groups[role] = append(groups[role], m)
		if amb {
			ambiguous[role] = true
		}
	}

	var edges [4]float64
	for _, role := range entity.EdgeRoles {
		group := groups[role]
		if len(group) == 0 || (len(group) > 1 && ambiguous[role]) {
			return entity.FieldGeometry{}, &entity.AmbiguousMarkerAssignmentError{Role: role, Count: len(group)}
		}

		coords := make([]float64, len(group))
		for i, m := range group {
			if role.Horizontal() {
				coords[i] = m.X
			} else {
				coords[i] = m.Y
			}
		}
		pos := stat.Mean(coords, nil)

		switch role {
		case entity.EdgeTop:
			pos -= inset.Y
		case entity.EdgeBottom:
			pos += inset.Y
		case entity.EdgeLeft:
			pos -= inset.X
		case entity.EdgeRight:
			pos += inset.X
		}
		edges[role] = pos
	}

	c := entity.Point{
		X: (edges[entity.EdgeLeft] + edges[entity.EdgeRight]) / 2,
		Y: (edges[entity.EdgeTop] + edges[entity.EdgeBottom]) / 2,
	}
	g := entity.FieldGeometry{
		Center: c,
		Top:    edges[entity.EdgeTop] - c.Y,
		Bottom: edges[entity.EdgeBottom] - c.Y,
		Left:   edges[entity.EdgeLeft] - c.X,
		Right:  edges[entity.EdgeRight] - c.X,
	}
	if !g.Finite() {
		return entity.FieldGeometry{}, &entity.InvalidFieldGeometryError{Source: "light", Reason: "non-finite marker coordinates"}
	}
	return g, nil
}
