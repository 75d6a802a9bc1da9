package entity

import "math"

// Point точка на плоскости
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DistanceTo евклидово расстояние до другой точки.
func (p Point) DistanceTo(o Point) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// FieldGeometry единое описание светового и радиационного поля.
// Края хранятся как смещения от центра со знаком: ось x направлена вправо,
// ось y вниз, поэтому у корректного поля Top и Left отрицательные.
type FieldGeometry struct {
	Center Point   `json:"center"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
}

// Edge возвращает смещение края для указанной стороны.
func (g FieldGeometry) Edge(role EdgeRole) float64 {
	switch role {
	case EdgeTop:
		return g.Top
	case EdgeBottom:
		return g.Bottom
	case EdgeLeft:
		return g.Left
	default:
		return g.Right
	}
}

// Absolute возвращает абсолютную координату края (x для Left/Right, y для Top/Bottom).
func (g FieldGeometry) Absolute(role EdgeRole) float64 {
	if role.Horizontal() {
		return g.Center.X + g.Edge(role)
	}
	return g.Center.Y + g.Edge(role)
}

// Finite проверяет, что все значения конечны.
func (g FieldGeometry) Finite() bool {
	for _, v := range []float64{g.Center.X, g.Center.Y, g.Top, g.Bottom, g.Left, g.Right} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Width ширина поля.
func (g FieldGeometry) Width() float64 { return g.Right - g.Left }

// Height высота поля.
func (g FieldGeometry) Height() float64 { return g.Bottom - g.Top }

// FieldEdges сырой ответ анализатора радиационного поля (абсолютные пиксели)
type FieldEdges struct {
	Top    float64
	Bottom float64
	Left   float64
	Right  float64
	Center Point
}
