package port

import (
	"context"

	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/entity"
)

// AcquisitionQueue очередь снимков пользователя до запуска проверки
type AcquisitionQueue interface {
	// Enqueue добавляет снимок и возвращает длину очереди
	Enqueue(ctx context.Context, userID int64, acq *entity.Acquisition) (int, error)

	// Drain забирает все снимки пользователя в порядке загрузки
	Drain(ctx context.Context, userID int64) ([]*entity.Acquisition, error)

	// Len количество снимков в очереди
	Len(ctx context.Context, userID int64) int
}
