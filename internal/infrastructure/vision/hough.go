package vision

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

// HoughLocalizer ищет круглые маркеры градиентным преобразованием Хафа.
// Не требует OpenCV.
type HoughLocalizer struct {
	BlurKernel   int     // размер ядра Гаусса (нечётный)
	BlurSigma    float64 // 0 — вычисляется по размеру ядра
	EdgeFraction float64 // порог краевого пикселя как доля максимального градиента
}

// NewHoughLocalizer создаёт локализатор с параметрами предобработки.
func NewHoughLocalizer(blurKernel int, edgeFraction float64) *HoughLocalizer {
	return &HoughLocalizer{
		BlurKernel:   blurKernel,
		EdgeFraction: edgeFraction,
	}
}

// Locate возвращает маркеры, отсортированные по убыванию оценки.
func (l *HoughLocalizer) Locate(ctx context.Context, pixels *mat.Dense, search entity.MarkerSearch) ([]entity.MarkerPoint, error) {
	if pixels == nil {
		return nil, errors.New("empty image")
	}
	rows, cols := pixels.Dims()
	if rows < 3 || cols < 3 {
		return nil, fmt.Errorf("image is too small (%dx%d)", cols, rows)
	}
	if search.MaxRadius <= 0 || search.MaxRadius < search.MinRadius {
		return nil, fmt.Errorf("invalid radius range [%.2f, %.2f]", search.MinRadius, search.MaxRadius)
	}

	img, ok := normalized(pixels)
	if !ok {
		// Однородное изображение: искать нечего.
		return nil, nil
	}
	img = gaussianBlur(img, cols, rows, l.kernelSize(), l.BlurSigma)

	gx, gy, mag := sobel(img, cols, rows)
	maxMag := floats.Max(mag)
	if maxMag == 0 {
		return nil, nil
	}
	threshold := l.EdgeFraction * maxMag

	edges := make([]int, 0, len(mag)/8)
	for i, m := range mag {
		if m > 0 && m >= threshold {
			edges = append(edges, i)
		}
	}

	rMin, rMax := radiusBounds(search)
	vote := func(r int) (acc, box []float64) {
		acc = make([]float64, rows*cols)
		box = make([]float64, rows*cols)
		for _, idx := range edges {
			x, y := idx%cols, idx/cols
			dx, dy := gx[idx]/mag[idx], gy[idx]/mag[idx]
			// Голосуем в обе стороны: маркер может быть светлее или темнее фона.
			for _, sign := range [2]float64{1, -1} {
				cx := int(math.Round(float64(x) + sign*float64(r)*dx))
				cy := int(math.Round(float64(y) + sign*float64(r)*dy))
				if cx >= 0 && cx < cols && cy >= 0 && cy < rows {
					acc[cy*cols+cx]++
				}
			}
		}
		boxSum3(acc, box, cols, rows)
		floats.Scale(1/(2*math.Pi*float64(r)), box)
		return acc, box
	}

	var candidates []entity.MarkerPoint
	var prev []float64
	acc, cur := vote(rMin)
	for r := rMin; r <= rMax; r++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var nextAcc, next []float64
		if r < rMax {
			nextAcc, next = vote(r + 1)
		}

		for y := 1; y < rows-1; y++ {
			for x := 1; x < cols-1; x++ {
				score := cur[y*cols+x]
				if score < search.Threshold || !localMax(cur, cols, x, y) {
					continue
				}
				if !notBelow(prev, cols, x, y, score) || !notBelow(next, cols, x, y, score) {
					continue
				}
				cx, cy := centroid(acc, cols, x, y)
				candidates = append(candidates, entity.MarkerPoint{X: cx, Y: cy, Radius: float64(r), Score: score})
			}
		}

		prev, acc, cur = cur, nextAcc, next
	}

	sortMarkers(candidates)
	return suppressClose(candidates, search.MinSeparation), nil
}

func (l *HoughLocalizer) kernelSize() int {
	k := l.BlurKernel
	if k < 3 {
		k = 3
	}
	if k%2 == 0 {
		k++
	}
	return k
}

// normalized приводит яркости к диапазону [0, 1]; false для однородного снимка.
func normalized(pixels *mat.Dense) ([]float64, bool) {
	rows, cols := pixels.Dims()
	out := make([]float64, 0, rows*cols)
	for y := 0; y < rows; y++ {
		out = append(out, pixels.RawRowView(y)...)
	}

	lo, hi := floats.Min(out), floats.Max(out)
	span := hi - lo
	if span == 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		return nil, false
	}
	floats.AddConst(-lo, out)
	floats.Scale(1/span, out)
	return out, true
}

// gaussianKernel одномерное ядро; sigma <= 0 считается как в OpenCV.
func gaussianKernel(size int, sigma float64) []float64 {
	if sigma <= 0 {
		sigma = 0.3*((float64(size)-1)*0.5-1) + 0.8
	}
	k := make([]float64, size)
	half := size / 2
	for i := range k {
		d := float64(i - half)
		k[i] = math.Exp(-d * d / (2 * sigma * sigma))
	}
	floats.Scale(1/floats.Sum(k), k)
	return k
}

// gaussianBlur сепарабельное размытие с повтором крайних пикселей.
func gaussianBlur(img []float64, cols, rows, size int, sigma float64) []float64 {
	k := gaussianKernel(size, sigma)
	half := size / 2
	tmp := make([]float64, len(img))
	out := make([]float64, len(img))

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			var s float64
			for i, w := range k {
				s += w * img[y*cols+clamp(x+i-half, cols)]
			}
			tmp[y*cols+x] = s
		}
	}
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			var s float64
			for i, w := range k {
				s += w * tmp[clamp(y+i-half, rows)*cols+x]
			}
			out[y*cols+x] = s
		}
	}
	return out
}

// sobel возвращает градиенты по x, y и их модуль.
func sobel(img []float64, cols, rows int) (gx, gy, mag []float64) {
	gx = make([]float64, len(img))
	gy = make([]float64, len(img))
	mag = make([]float64, len(img))
	at := func(x, y int) float64 {
		return img[clamp(y, rows)*cols+clamp(x, cols)]
	}

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			sx := at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1)
			sy := at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1)
			i := y*cols + x
			gx[i], gy[i] = sx, sy
			mag[i] = math.Hypot(sx, sy)
		}
	}
	return gx, gy, mag
}

// boxSum3 сумма по окну 3x3, края не учитываются.
func boxSum3(src, dst []float64, cols, rows int) {
	for i := range dst {
		dst[i] = 0
	}
	for y := 1; y < rows-1; y++ {
		for x := 1; x < cols-1; x++ {
			var s float64
			for dy := -1; dy <= 1; dy++ {
				row := (y + dy) * cols
				s += src[row+x-1] + src[row+x] + src[row+x+1]
			}
			dst[y*cols+x] = s
		}
	}
}

// notBelow true, если в окне 3x3 соседнего радиуса нет оценки выше score; nil — радиуса нет.
func notBelow(v []float64, cols, x, y int, score float64) bool {
	if v == nil {
		return true
	}
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if v[(y+dy)*cols+x+dx] > score {
				return false
			}
		}
	}
	return true
}

func localMax(v []float64, cols, x, y int) bool {
	c := v[y*cols+x]
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if (dx != 0 || dy != 0) && v[(y+dy)*cols+x+dx] > c {
				return false
			}
		}
	}
	return true
}

// centroid уточняет центр по голосам в окне 3x3.
func centroid(acc []float64, cols, x, y int) (float64, float64) {
	var sum, sx, sy float64
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			w := acc[(y+dy)*cols+x+dx]
			sum += w
			sx += w * float64(x+dx)
			sy += w * float64(y+dy)
		}
	}
	if sum == 0 {
		return float64(x), float64(y)
	}
	return sx / sum, sy / sum
}

func clamp(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

// Проверка реализации интерфейса
var _ port.MarkerLocalizer = (*HoughLocalizer)(nil)
