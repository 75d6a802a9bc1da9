package entity

import "time"

// Verdict строковое представление результата для отчётов
func Verdict(pass bool) string {
	if pass {
		return "PASS"
	}
	return "FAIL"
}

// EdgeOffset сравнение одного края светового и радиационного поля (мм)
type EdgeOffset struct {
	Role      EdgeRole `json:"role"`
	Light     float64  `json:"light_mm"`
	Radiation float64  `json:"radiation_mm"`
	Offset    float64  `json:"offset_mm"` // радиация минус свет
	AbsOffset float64  `json:"abs_offset_mm"`
	Pass      bool     `json:"pass"`
}

// CoincidenceResult итог сравнения полей для одного снимка
type CoincidenceResult struct {
	Angle        AngleTag      `json:"angle_tag"`
	Light        FieldGeometry `json:"light"`
	Radiation    FieldGeometry `json:"radiation"`
	Edges        [4]EdgeOffset `json:"edges"` // порядок EdgeRoles
	CenterOffset float64       `json:"center_offset_mm"`
	CenterPass   bool          `json:"center_pass"`
	MaxAbsOffset float64       `json:"max_abs_offset_mm"`
	Pass         bool          `json:"pass"`
}

// Edge возвращает сравнение для стороны.
func (r *CoincidenceResult) Edge(role EdgeRole) EdgeOffset {
	return r.Edges[role]
}

// Failure заглушка вместо результата, если снимок обработать не удалось
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
}

// Overlay геометрия в пикселях для визуального отчёта
type Overlay struct {
	Light     *FieldGeometry `json:"light,omitempty"`
	Radiation *FieldGeometry `json:"radiation,omitempty"`
	Markers   []MarkerPoint  `json:"markers,omitempty"`
}

// Outcome запись результата по одному снимку: либо Result, либо Failure
type Outcome struct {
	Index   int                `json:"index"`
	Source  string             `json:"source"`
	Angle   AngleTag           `json:"angle_tag"`
	Meta    AcquisitionMeta    `json:"meta"`
	Result  *CoincidenceResult `json:"result,omitempty"`
	Failure *Failure           `json:"failure,omitempty"`
	Overlay *Overlay           `json:"overlay,omitempty"`
}

// Passed true, если снимок обработан и прошёл проверку.
func (o Outcome) Passed() bool {
	return o.Result != nil && o.Result.Pass
}

// ResultSet упорядоченные результаты прогона в порядке входных снимков
type ResultSet struct {
	RunID     string        `json:"run_id"`
	CreatedAt time.Time     `json:"created_at"`
	Tolerance ToleranceSpec `json:"tolerance"`
	Outcomes  []Outcome     `json:"outcomes"`
}

// Len количество записей.
func (rs *ResultSet) Len() int {
	return len(rs.Outcomes)
}

// Passed количество снимков, прошедших проверку.
func (rs *ResultSet) Passed() int {
	n := 0
	for _, o := range rs.Outcomes {
		if o.Passed() {
			n++
		}
	}
	return n
}

// Failed количество снимков, не прошедших проверку или не обработанных.
func (rs *ResultSet) Failed() int {
	return rs.Len() - rs.Passed()
}
