package vision

import (
	"math"

	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/entity"
)

// GoCVParams — параметры OpenCV-пайплайна (CLAHE, размытие, HoughCircles).
type GoCVParams struct {
	ClipLimit      float64
	TileSize       int
	BlurKernel     int
	DP             float64
	CannyThreshold float64
	// AccumulatorThreshold 0 означает порог из MarkerSearch.Threshold.
	AccumulatorThreshold float64
	MinImageSide         int
}

// DefaultGoCVParams возвращает параметры исходного скрипта QA.
func DefaultGoCVParams() GoCVParams {
	return GoCVParams{
		ClipLimit:      2.0,
		TileSize:       8,
		BlurKernel:     5,
		DP:             1.2,
		CannyThreshold: 20,
		MinImageSide:   64,
	}
}

// accumulatorThreshold переводит оценку votes/(2πr) в число голосов OpenCV для самого малого радиуса.
// HoughGradient даёт один голос на точку контура, а не два, поэтому окружность делится пополам.
func (p GoCVParams) accumulatorThreshold(search entity.MarkerSearch) float64 {
	if p.AccumulatorThreshold > 0 {
		return p.AccumulatorThreshold
	}
	rMin, _ := radiusBounds(search)
	dp := p.DP
	if dp < 1 {
		dp = 1
	}
	return math.Max(1, math.Round(search.Threshold*math.Pi*float64(rMin)/dp))
}
