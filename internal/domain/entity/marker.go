package entity

import (
	"fmt"
	"strings"
)

// EdgeRole сторона поля, к которой относится маркер или край
type EdgeRole int

const (
	EdgeTop EdgeRole = iota
	EdgeBottom
	EdgeLeft
	EdgeRight
)

// EdgeRoles фиксированный порядок сторон для всех сравнений и отчётов.
var EdgeRoles = [4]EdgeRole{EdgeTop, EdgeBottom, EdgeLeft, EdgeRight}

func (r EdgeRole) String() string {
	switch r {
	case EdgeTop:
		return "Top"
	case EdgeBottom:
		return "Bottom"
	case EdgeLeft:
		return "Left"
	case EdgeRight:
		return "Right"
	default:
		return fmt.Sprintf("EdgeRole(%d)", int(r))
	}
}

// Horizontal сообщает, измеряется ли сторона по оси x.
func (r EdgeRole) Horizontal() bool {
	return r == EdgeLeft || r == EdgeRight
}

// MarshalText нужен для стабильной сериализации в JSON
func (r EdgeRole) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText разбирает имя стороны без учёта регистра.
func (r *EdgeRole) UnmarshalText(text []byte) error {
	name := strings.TrimSpace(string(text))
	for _, role := range EdgeRoles {
		if strings.EqualFold(name, role.String()) {
			*r = role
			return nil
		}
	}
	return fmt.Errorf("unknown edge role %q", name)
}

// MarkerPoint найденный BB-маркер в пиксельных координатах
type MarkerPoint struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
	Score  float64 `json:"score"`
}

// Position возвращает центр маркера.
func (m MarkerPoint) Position() Point {
	return Point{X: m.X, Y: m.Y}
}

// MarkerSearch параметры поиска круглых маркеров (все размеры в пикселях)
type MarkerSearch struct {
	MinRadius     float64
	MaxRadius     float64
	MinSeparation float64
	Threshold     float64 // минимальная оценка кандидата
	Expected      int     // сколько маркеров должно быть найдено
}
