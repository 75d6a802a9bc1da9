//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"

	"gonum.org/v1/gonum/mat"

	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/entity"
)

type GoCVLocalizer struct {
	GoCVParams
}

// NewGoCVLocalizer создаёт локализатор-заглушку (без OpenCV).
func NewGoCVLocalizer(p GoCVParams) *GoCVLocalizer {
	return &GoCVLocalizer{GoCVParams: p}
}

// Locate возвращает ошибку, если сборка без тега gocv.
func (d *GoCVLocalizer) Locate(ctx context.Context, pixels *mat.Dense, search entity.MarkerSearch) ([]entity.MarkerPoint, error) {
	_ = ctx
	_ = pixels
	_ = search
	return nil, errors.New("gocv build tag is not enabled")
}
