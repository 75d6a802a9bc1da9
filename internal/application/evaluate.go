package app

import (
	"math"

	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/entity"
)

// Evaluate сравнивает световое и радиационное поле (оба в мм) и применяет допуски.
func Evaluate(angle entity.AngleTag, light, radiation entity.FieldGeometry, tol entity.ToleranceSpec) entity.CoincidenceResult {
	res := entity.CoincidenceResult{
		Angle:     angle,
		Light:     light,
		Radiation: radiation,
		Pass:      true,
	}

	for i, role := range entity.EdgeRoles {
		l := light.Edge(role)
		r := radiation.Edge(role)
		offset := r - l
		abs := math.Abs(offset)
		pass := abs <= tol.EdgeToleranceMM

		res.Edges[i] = entity.EdgeOffset{
			Role:      role,
			Light:     l,
			Radiation: r,
			Offset:    offset,
			AbsOffset: abs,
			Pass:      pass,
		}
		res.MaxAbsOffset = math.Max(res.MaxAbsOffset, abs)
		if !pass {
			res.Pass = false
		}
	}

	res.CenterOffset = light.Center.DistanceTo(radiation.Center)
	res.CenterPass = res.CenterOffset <= tol.CenterToleranceMM
	res.Pass = res.Pass && res.CenterPass
	return res
}
