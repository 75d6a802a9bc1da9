package fieldanalysis

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/entity"
	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/port"
)

// ErrNoCrossing профиль не пересекает уровень 50%.
var ErrNoCrossing = errors.New("profile does not cross the 50% level")

// ProfileAnalyzer находит края радиационного поля по центральным профилям.
type ProfileAnalyzer struct {
	Band       int // полуширина полосы усреднения, пиксели
	Iterations int
}

// NewProfileAnalyzer создаёт анализатор профилей.
func NewProfileAnalyzer(band, iterations int) *ProfileAnalyzer {
	return &ProfileAnalyzer{Band: band, Iterations: iterations}
}

// Analyze возвращает края поля на уровне 50% и центр пучка в пикселях.
func (a *ProfileAnalyzer) Analyze(ctx context.Context, pixels *mat.Dense) (entity.FieldEdges, error) {
	if pixels == nil {
		return entity.FieldEdges{}, errors.New("empty image")
	}
	rows, cols := pixels.Dims()
	if rows < 3 || cols < 3 {
		return entity.FieldEdges{}, fmt.Errorf("image is too small (%dx%d)", cols, rows)
	}

	iterations := a.Iterations
	if iterations < 1 {
		iterations = 1
	}

	cx, cy := float64(cols-1)/2, float64(rows-1)/2
	var edges entity.FieldEdges
	for i := 0; i < iterations; i++ {
		if err := ctx.Err(); err != nil {
			return entity.FieldEdges{}, err
		}

		left, right, err := crossings(a.rowProfile(pixels, cy), cx)
		if err != nil {
			return entity.FieldEdges{}, fmt.Errorf("horizontal profile: %w", err)
		}
		cx = (left + right) / 2

		top, bottom, err := crossings(a.colProfile(pixels, cx), cy)
		if err != nil {
			return entity.FieldEdges{}, fmt.Errorf("vertical profile: %w", err)
		}
		cy = (top + bottom) / 2

		edges = entity.FieldEdges{
			Top:    top,
			Bottom: bottom,
			Left:   left,
			Right:  right,
			Center: entity.Point{X: cx, Y: cy},
		}
	}
	return edges, nil
}

// rowProfile среднее по строкам полосы вокруг y.
func (a *ProfileAnalyzer) rowProfile(pixels *mat.Dense, y float64) []float64 {
	rows, cols := pixels.Dims()
	lo, hi := a.bandRange(y, rows)
	out := make([]float64, cols)
	for r := lo; r <= hi; r++ {
		floats.Add(out, pixels.RawRowView(r))
	}
	floats.Scale(1/float64(hi-lo+1), out)
	return out
}

// colProfile среднее по столбцам полосы вокруг x.
func (a *ProfileAnalyzer) colProfile(pixels *mat.Dense, x float64) []float64 {
	rows, cols := pixels.Dims()
	lo, hi := a.bandRange(x, cols)
	out := make([]float64, rows)
	col := make([]float64, rows)
	for c := lo; c <= hi; c++ {
		mat.Col(col, c, pixels)
		floats.Add(out, col)
	}
	floats.Scale(1/float64(hi-lo+1), out)
	return out
}

func (a *ProfileAnalyzer) bandRange(center float64, n int) (int, int) {
	c := int(math.Round(center))
	if c < 0 {
		c = 0
	}
	if c > n-1 {
		c = n - 1
	}
	band := a.Band
	if band < 0 {
		band = 0
	}
	lo, hi := c-band, c+band
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	return lo, hi
}

// crossings ищет пересечения уровня 50% слева и справа от from.
func crossings(profile []float64, from float64) (float64, float64, error) {
	lo, hi := floats.Min(profile), floats.Max(profile)
	if hi-lo == 0 || math.IsNaN(hi-lo) {
		return 0, 0, ErrNoCrossing
	}
	level := lo + 0.5*(hi-lo)

	start := int(math.Round(from))
	if start < 0 || start >= len(profile) || profile[start] < level {
		// Центр вне поля: начинаем с максимума профиля.
		start = floats.MaxIdx(profile)
	}

	left := -1.0
	for i := start; i > 0; i-- {
		if profile[i-1] < level {
			left = interpolate(profile, i-1, level)
			break
		}
	}
	right := -1.0
	for i := start; i < len(profile)-1; i++ {
		if profile[i+1] < level {
			right = interpolate(profile, i, level)
			break
		}
	}
	if left < 0 || right < 0 {
		return 0, 0, ErrNoCrossing
	}
	return left, right, nil
}

// interpolate линейная интерполяция уровня между i и i+1.
func interpolate(profile []float64, i int, level float64) float64 {
	a, b := profile[i], profile[i+1]
	if a == b {
		return float64(i)
	}
	return float64(i) + (level-a)/(b-a)
}

// Проверка реализации интерфейса
var _ port.FieldAnalyzer = (*ProfileAnalyzer)(nil)
