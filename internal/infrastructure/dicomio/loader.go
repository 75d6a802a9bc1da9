package dicomio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"
	"gonum.org/v1/gonum/mat"

	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/entity"
	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/port"
)

// Значения по умолчанию, если в файле нет соответствующих тегов.
const (
	DefaultSID     = 1500.0
	DefaultSAD     = 1000.0
	DefaultSpacing = 1.0
)

// Теги RT Image, которые читает загрузчик.
var (
	tagRTImageDescription     = tag.Tag{Group: 0x3002, Element: 0x0004}
	tagImagePlanePixelSpacing = tag.Tag{Group: 0x3002, Element: 0x0011}
	tagRadiationMachineName   = tag.Tag{Group: 0x3002, Element: 0x0020}
	tagRadiationMachineSAD    = tag.Tag{Group: 0x3002, Element: 0x0022}
	tagRTImageSID             = tag.Tag{Group: 0x3002, Element: 0x0026}
	tagGantryAngle            = tag.Tag{Group: 0x300A, Element: 0x011E}
)

// ErrNoPixelData в файле нет пиксельных данных
var ErrNoPixelData = errors.New("dicom file has no pixel data")

// Loader читает RT Image снимки фантома из DICOM.
type Loader struct {
	angles entity.AngleTable
}

// NewLoader создаёт загрузчик; угол стола определяется по имени файла через angles.
func NewLoader(angles entity.AngleTable) *Loader {
	return &Loader{angles: angles}
}

// LoadFile читает снимок с диска.
func (l *Loader) LoadFile(ctx context.Context, path string) (*entity.Acquisition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ds, err := dicom.ParseFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("parse dicom %s: %w", path, err)
	}
	return l.build(filepath.Base(path), ds)
}

// Decode разбирает снимок из памяти.
func (l *Loader) Decode(name string, data []byte) (*entity.Acquisition, error) {
	if len(data) == 0 {
		return nil, errors.New("empty dicom payload")
	}

	ds, err := dicom.Parse(bytes.NewReader(data), int64(len(data)), nil)
	if err != nil {
		return nil, fmt.Errorf("parse dicom %s: %w", name, err)
	}
	return l.build(filepath.Base(name), ds)
}

func (l *Loader) build(name string, ds dicom.Dataset) (*entity.Acquisition, error) {
	pixels, err := pixelData(&ds)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	acq := &entity.Acquisition{
		Source:  name,
		Pixels:  pixels,
		Spacing: pixelSpacing(&ds),
		SID:     floatOr(&ds, tagRTImageSID, DefaultSID),
		SAD:     floatOr(&ds, tagRadiationMachineSAD, DefaultSAD),
		Angle:   l.angles.Lookup(name),
		Meta: entity.AcquisitionMeta{
			GantryAngle: floatOr(&ds, tagGantryAngle, 0),
			MachineName: stringOr(&ds, tagRadiationMachineName, ""),
			Description: stringOr(&ds, tagRTImageDescription, ""),
		},
	}
	return acq, nil
}

// pixelData берёт первый кадр и первую компоненту каждого пикселя.
func pixelData(ds *dicom.Dataset) (*mat.Dense, error) {
	el, err := ds.FindElementByTag(tag.PixelData)
	if err != nil {
		return nil, ErrNoPixelData
	}
	info, ok := el.Value.GetValue().(dicom.PixelDataInfo)
	if !ok || len(info.Frames) == 0 {
		return nil, ErrNoPixelData
	}

	nf, err := info.Frames[0].GetNativeFrame()
	if err != nil {
		return nil, fmt.Errorf("read pixel frame: %w", err)
	}
	return nativeToDense(nf)
}

// nativeToDense переводит кадр в матрицу яркостей (строки — y).
func nativeToDense(nf *frame.NativeFrame) (*mat.Dense, error) {
	if nf == nil || nf.Rows <= 0 || nf.Cols <= 0 {
		return nil, ErrNoPixelData
	}
	if len(nf.Data) < nf.Rows*nf.Cols {
		return nil, fmt.Errorf("pixel data is truncated: %d of %d samples", len(nf.Data), nf.Rows*nf.Cols)
	}

	out := mat.NewDense(nf.Rows, nf.Cols, nil)
	for i := 0; i < nf.Rows*nf.Cols; i++ {
		sample := nf.Data[i]
		if len(sample) == 0 {
			continue
		}
		out.Set(i/nf.Cols, i%nf.Cols, float64(sample[0]))
	}
	return out, nil
}

// pixelSpacing читает PixelSpacing, затем ImagePlanePixelSpacing.
func pixelSpacing(ds *dicom.Dataset) entity.Spacing {
	for _, t := range []tag.Tag{tag.PixelSpacing, tagImagePlanePixelSpacing} {
		v := floats(ds, t)
		if len(v) >= 2 && v[0] > 0 && v[1] > 0 {
			return entity.Spacing{Row: v[0], Col: v[1]}
		}
		if len(v) == 1 && v[0] > 0 {
			return entity.Spacing{Row: v[0], Col: v[0]}
		}
	}
	return entity.Spacing{Row: DefaultSpacing, Col: DefaultSpacing}
}

func floatOr(ds *dicom.Dataset, t tag.Tag, def float64) float64 {
	v := floats(ds, t)
	if len(v) == 0 {
		return def
	}
	return v[0]
}

func stringOr(ds *dicom.Dataset, t tag.Tag, def string) string {
	el, err := ds.FindElementByTag(t)
	if err != nil {
		return def
	}
	if s, ok := el.Value.GetValue().([]string); ok && len(s) > 0 {
		return strings.TrimSpace(strings.Join(s, " "))
	}
	return def
}

// floats читает числовые значения тега; DS хранятся как строки.
func floats(ds *dicom.Dataset, t tag.Tag) []float64 {
	el, err := ds.FindElementByTag(t)
	if err != nil {
		return nil
	}
	switch v := el.Value.GetValue().(type) {
	case []string:
		return parseDecimals(v)
	case []float64:
		return finite(v)
	case []int:
		out := make([]float64, 0, len(v))
		for _, i := range v {
			out = append(out, float64(i))
		}
		return out
	}
	return nil
}

// parseDecimals разбирает значения DS, в том числе склеенные через "\".
func parseDecimals(values []string) []float64 {
	var out []float64
	for _, raw := range values {
		for _, part := range strings.Split(raw, `\`) {
			f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				continue
			}
			out = append(out, f)
		}
	}
	return finite(out)
}

func finite(values []float64) []float64 {
	out := values[:0:0]
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// Проверка реализации интерфейса
var _ port.AcquisitionLoader = (*Loader)(nil)
