package port

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/entity"
)

// FieldAnalyzer внешний анализатор радиационного поля
type FieldAnalyzer interface {
	// Analyze возвращает края поля и центр пучка в пиксельных координатах
	Analyze(ctx context.Context, pixels *mat.Dense) (entity.FieldEdges, error)
}
