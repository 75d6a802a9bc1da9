package vision

import (
	"math"
	"sort"

	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/entity"
)

// sortMarkers упорядочивает кандидатов: оценка по убыванию, затем левее, затем выше.
func sortMarkers(markers []entity.MarkerPoint) {
	sort.SliceStable(markers, func(i, j int) bool {
		a, b := markers[i], markers[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Y < b.Y
	})
}

// suppressClose жадно оставляет кандидатов не ближе minSeparation друг к другу.
// Ожидает отсортированный вход.
func suppressClose(candidates []entity.MarkerPoint, minSeparation float64) []entity.MarkerPoint {
	accepted := make([]entity.MarkerPoint, 0, len(candidates))
	for _, c := range candidates {
		ok := true
		for _, a := range accepted {
			if math.Hypot(c.X-a.X, c.Y-a.Y) < minSeparation {
				ok = false
				break
			}
		}
		if ok {
			accepted = append(accepted, c)
		}
	}
	return accepted
}

// radiusBounds — целочисленный диапазон радиусов поиска: нижняя граница вниз (не меньше 1), верхняя вверх.
func radiusBounds(search entity.MarkerSearch) (int, int) {
	rMin := int(math.Max(1, math.Floor(search.MinRadius)))
	rMax := int(math.Ceil(search.MaxRadius))
	return rMin, rMax
}
