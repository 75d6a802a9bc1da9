package port

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/entity"
)

// MarkerLocalizer интерфейс поиска BB-маркеров на снимке
type MarkerLocalizer interface {
	// Locate возвращает найденные маркеры, отсортированные по убыванию оценки
	Locate(ctx context.Context, pixels *mat.Dense, search entity.MarkerSearch) ([]entity.MarkerPoint, error)
}
