//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"

	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/entity"
)

// GoCVLocalizer ищет маркеры через OpenCV: CLAHE, размытие и HoughCircles.
type GoCVLocalizer struct {
	GoCVParams
}

// NewGoCVLocalizer создаёт локализатор с заданными параметрами OpenCV.
func NewGoCVLocalizer(p GoCVParams) *GoCVLocalizer {
	return &GoCVLocalizer{GoCVParams: p}
}

// Locate запускает поиск кругов и возвращает маркеры по убыванию оценки.
func (d *GoCVLocalizer) Locate(ctx context.Context, pixels *mat.Dense, search entity.MarkerSearch) ([]entity.MarkerPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := denseToMat(pixels)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	if src.Cols() < d.MinImageSide || src.Rows() < d.MinImageSide {
		return nil, fmt.Errorf("quality gate failed: image is too small (%dx%d)", src.Cols(), src.Rows())
	}

	// Нормализуем в 8 бит, как это делает OpenCV-пайплайн исходного скрипта.
	norm := gocv.NewMat()
	defer norm.Close()
	gocv.Normalize(src, &norm, 0, 255, gocv.NormMinMax)

	gray := gocv.NewMat()
	defer gray.Close()
	norm.ConvertTo(&gray, gocv.MatTypeCV8U)

	clahe := gocv.NewCLAHEWithParams(d.ClipLimit, image.Pt(d.TileSize, d.TileSize))
	defer clahe.Close()

	enhanced := gocv.NewMat()
	defer enhanced.Close()
	clahe.Apply(gray, &enhanced)

	blur := gocv.NewMat()
	defer blur.Close()
	gocv.GaussianBlur(enhanced, &blur, image.Pt(d.BlurKernel, d.BlurKernel), 0, 0, gocv.BorderDefault)

	circles := gocv.NewMat()
	defer circles.Close()
	rMin, rMax := radiusBounds(search)
	gocv.HoughCirclesWithParams(blur, &circles, gocv.HoughGradient, d.DP, search.MinSeparation,
		d.CannyThreshold, d.accumulatorThreshold(search), rMin, rMax)

	if circles.Empty() || circles.Cols() == 0 {
		return nil, nil
	}

	// OpenCV отдаёт круги по убыванию числа голосов, оценка — нормированный ранг.
	n := circles.Cols()
	markers := make([]entity.MarkerPoint, 0, n)
	for i := 0; i < n; i++ {
		v := circles.GetVecfAt(0, i)
		markers = append(markers, entity.MarkerPoint{
			X:      float64(v[0]),
			Y:      float64(v[1]),
			Radius: float64(v[2]),
			Score:  float64(n-i) / float64(n),
		})
	}

	sortMarkers(markers)
	return suppressClose(markers, search.MinSeparation), nil
}

// denseToMat копирует матрицу яркостей в gocv.Mat типа CV32F.
func denseToMat(pixels *mat.Dense) (gocv.Mat, error) {
	if pixels == nil {
		return gocv.NewMat(), errors.New("empty image")
	}
	rows, cols := pixels.Dims()
	m := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV32F)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			m.SetFloatAt(y, x, float32(pixels.At(y, x)))
		}
	}
	return m, nil
}
