package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/entity"
	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/port"
)

// CSVHeader колонки таблицы результатов.
var CSVHeader = []string{
	"source", "angle_tag",
	"top_offset_mm", "bottom_offset_mm", "left_offset_mm", "right_offset_mm", "center_offset_mm",
	"top_pass", "bottom_pass", "left_pass", "right_pass", "center_pass",
	"overall", "max_abs_offset_mm", "error_kind", "error",
}

// CSVWriter пишет одну строку на снимок в порядке входа.
type CSVWriter struct{}

// NewCSVWriter создаёт writer таблицы результатов.
func NewCSVWriter() *CSVWriter {
	return &CSVWriter{}
}

// Write сериализует набор результатов.
func (CSVWriter) Write(w io.Writer, rs *entity.ResultSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	if rs != nil {
		for _, o := range rs.Outcomes {
			if err := cw.Write(csvRow(o)); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(o entity.Outcome) []string {
	row := make([]string, 0, len(CSVHeader))
	row = append(row, o.Source, strconv.Itoa(int(o.Angle)))

	if o.Result == nil {
		// Для необработанного снимка числовые колонки пустые.
		for i := 0; i < 10; i++ {
			row = append(row, "")
		}
		row = append(row, entity.Verdict(false), "")
		if o.Failure != nil {
			row = append(row, string(o.Failure.Kind), o.Failure.Message)
		} else {
			row = append(row, "", "")
		}
		return row
	}

	r := o.Result
	for _, role := range entity.EdgeRoles {
		row = append(row, mm(r.Edge(role).Offset))
	}
	row = append(row, mm(r.CenterOffset))
	for _, role := range entity.EdgeRoles {
		row = append(row, entity.Verdict(r.Edge(role).Pass))
	}
	row = append(row,
		entity.Verdict(r.CenterPass),
		entity.Verdict(r.Pass),
		mm(r.MaxAbsOffset),
		"", "",
	)
	return row
}

func mm(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// Проверка реализации интерфейса
var _ port.ResultWriter = (*CSVWriter)(nil)
