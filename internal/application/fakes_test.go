package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/entity"
)

// squareMarkers четыре маркера по сторонам квадрата с центром (50, 50).
func squareMarkers(half float64) []entity.MarkerPoint {
	return []entity.MarkerPoint{
		{X: 50, Y: 50 - half, Radius: 5, Score: 1},
		{X: 50, Y: 50 + half, Radius: 5, Score: 1},
		{X: 50 - half, Y: 50, Radius: 5, Score: 1},
		{X: 50 + half, Y: 50, Radius: 5, Score: 1},
	}
}

func squareEdges(half float64) entity.FieldEdges {
	return entity.FieldEdges{
		Top:    50 - half,
		Bottom: 50 + half,
		Left:   50 - half,
		Right:  50 + half,
		Center: entity.Point{X: 50, Y: 50},
	}
}

func newAcquisition(name string) *entity.Acquisition {
	return &entity.Acquisition{
		Source:  name,
		Pixels:  mat.NewDense(101, 101, nil),
		Spacing: entity.Spacing{Row: 1, Col: 1},
		SID:     1000,
		SAD:     1000,
		Angle:   entity.DefaultAngleTable().Lookup(name),
	}
}

type fakeLocalizer struct {
	mu       sync.Mutex
	markers  map[*mat.Dense][]entity.MarkerPoint
	fallback []entity.MarkerPoint
	delays   map[*mat.Dense]time.Duration
	err      error
	calls    atomic.Int32
}

func newFakeLocalizer(fallback []entity.MarkerPoint) *fakeLocalizer {
	return &fakeLocalizer{
		markers:  make(map[*mat.Dense][]entity.MarkerPoint),
		delays:   make(map[*mat.Dense]time.Duration),
		fallback: fallback,
	}
}

func (f *fakeLocalizer) set(acq *entity.Acquisition, markers []entity.MarkerPoint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markers[acq.Pixels] = markers
}

func (f *fakeLocalizer) Locate(ctx context.Context, pixels *mat.Dense, search entity.MarkerSearch) ([]entity.MarkerPoint, error) {
	f.calls.Add(1)
	f.mu.Lock()
	delay := f.delays[pixels]
	markers, ok := f.markers[pixels]
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	if !ok {
		markers = f.fallback
	}
	return markers, nil
}

type fakeAnalyzer struct {
	mu       sync.Mutex
	edges    map[*mat.Dense]entity.FieldEdges
	fallback entity.FieldEdges
	err      error
}

func newFakeAnalyzer(fallback entity.FieldEdges) *fakeAnalyzer {
	return &fakeAnalyzer{edges: make(map[*mat.Dense]entity.FieldEdges), fallback: fallback}
}

func (f *fakeAnalyzer) set(acq *entity.Acquisition, edges entity.FieldEdges) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edges[acq.Pixels] = edges
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, pixels *mat.Dense) (entity.FieldEdges, error) {
	if f.err != nil {
		return entity.FieldEdges{}, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.edges[pixels]; ok {
		return e, nil
	}
	return f.fallback, nil
}

type fakeLoader struct{}

func (fakeLoader) LoadFile(ctx context.Context, path string) (*entity.Acquisition, error) {
	return newAcquisition(path), nil
}

func (fakeLoader) Decode(name string, data []byte) (*entity.Acquisition, error) {
	if len(data) == 0 {
		return nil, errors.New("empty file")
	}
	return newAcquisition(name), nil
}

type fakeWriter struct{}

func (fakeWriter) Write(w io.Writer, rs *entity.ResultSet) error {
	for _, o := range rs.Outcomes {
		if _, err := fmt.Fprintf(w, "%s,%t\n", o.Source, o.Passed()); err != nil {
			return err
		}
	}
	return nil
}

type fakeRenderer struct{}

func (fakeRenderer) Render(w io.Writer, rs *entity.ResultSet, acquisitions []*entity.Acquisition) error {
	_, err := fmt.Fprintf(w, "%%PDF pages=%d", len(acquisitions))
	return err
}

func testPipelineConfig() PipelineConfig {
	markers := DefaultMarkerConfig()
	markers.InsetMM = 0
	return PipelineConfig{
		Tolerance: entity.DefaultTolerance(),
		Markers:   markers,
		Workers:   4,
	}
}
