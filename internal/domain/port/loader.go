package port

import (
	"context"

	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/entity"
)

// AcquisitionLoader источник снимков
type AcquisitionLoader interface {
	// LoadFile читает снимок с диска
	LoadFile(ctx context.Context, path string) (*entity.Acquisition, error)

	// Decode разбирает снимок из памяти; name используется для угла стола
	Decode(name string, data []byte) (*entity.Acquisition, error)
}
