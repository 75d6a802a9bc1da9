package entity

import (
	"gonum.org/v1/gonum/mat"
)

// Spacing размер пикселя детектора в мм (Row — по оси y, Col — по оси x)
type Spacing struct {
	Row float64 `json:"row"`
	Col float64 `json:"col"`
}

// AcquisitionMeta дополнительные атрибуты снимка для отчётов
type AcquisitionMeta struct {
	GantryAngle float64 `json:"gantry_angle"`
	MachineName string  `json:"machine_name"`
	Description string  `json:"description"`
}

// Acquisition один обработанный снимок фантома.
// После загрузки не изменяется.
type Acquisition struct {
	Source  string     // имя исходного файла
	Pixels  *mat.Dense // строки — y, столбцы — x
	Spacing Spacing
	SID     float64 // источник — детектор, мм
	SAD     float64 // источник — изоцентр, мм
	Angle   AngleTag
	Meta    AcquisitionMeta
}

// Size возвращает ширину и высоту изображения в пикселях.
func (a *Acquisition) Size() (width, height int) {
	if a == nil || a.Pixels == nil {
		return 0, 0
	}
	rows, cols := a.Pixels.Dims()
	return cols, rows
}

// Center возвращает геометрический центр изображения.
func (a *Acquisition) Center() Point {
	w, h := a.Size()
	return Point{X: float64(w-1) / 2, Y: float64(h-1) / 2}
}

// Magnification коэффициент увеличения SID/SAD.
func (a *Acquisition) Magnification() float64 {
	if a.SAD == 0 {
		return 0
	}
	return a.SID / a.SAD
}
