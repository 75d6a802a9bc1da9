package report

import (
	"encoding/json"
	"io"

	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/entity"
	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/port"
)

// JSONWriter пишет ResultSet целиком с отступами.
type JSONWriter struct{}

// NewJSONWriter создаёт JSON writer.
func NewJSONWriter() *JSONWriter {
	return &JSONWriter{}
}

func (JSONWriter) Write(w io.Writer, rs *entity.ResultSet) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rs)
}

var _ port.ResultWriter = (*JSONWriter)(nil)
