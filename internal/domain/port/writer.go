package port

import (
	"io"

	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/entity"
)

// ResultWriter сериализует набор результатов (CSV, JSON, графики)
type ResultWriter interface {
	Write(w io.Writer, rs *entity.ResultSet) error
}

// ReportRenderer строит визуальный отчёт с наложением полей на снимки
type ReportRenderer interface {
	// Render получает снимки в том же порядке, что и rs.Outcomes
	Render(w io.Writer, rs *entity.ResultSet, acquisitions []*entity.Acquisition) error
}
