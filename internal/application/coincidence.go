package app

import (
	"context"
	"errors"
	"log"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/entity"
	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/port"
)

// MarkerConfig параметры фантома и поиска маркеров (физические величины в мм)
type MarkerConfig struct {
	RadiusMM           float64 // радиус BB на уровне изоцентра
	RadiusTolerance    float64 // допустимое отклонение радиуса, доля
	SeparationFactor   float64 // мин. расстояние между центрами в радиусах
	Sensitivity        float64 // порог оценки кандидата
	Expected           int
	InsetMM            float64 // расстояние от BB до края светового поля
	AmbiguityWindowDeg float64
}

// DefaultMarkerConfig параметры фантома FacePhantom.
func DefaultMarkerConfig() MarkerConfig {
	return MarkerConfig{
		RadiusMM:           7.5,
		RadiusTolerance:    0.15,
		SeparationFactor:   1.8,
		Sensitivity:        1.0,
		Expected:           4,
		InsetMM:            15,
		AmbiguityWindowDeg: 10,
	}
}

// SearchFor пересчитывает размеры маркера в пиксели детектора для снимка.
func (c MarkerConfig) SearchFor(acq *entity.Acquisition) entity.MarkerSearch {
	radius := 0.0
	if acq.Spacing.Col > 0 {
		radius = c.RadiusMM * acq.Magnification() / acq.Spacing.Col
	}
	return entity.MarkerSearch{
		MinRadius:     radius * (1 - c.RadiusTolerance),
		MaxRadius:     radius * (1 + c.RadiusTolerance),
		MinSeparation: radius * c.SeparationFactor,
		Threshold:     c.Sensitivity,
		Expected:      c.Expected,
	}
}

// InsetFor переводит отступ BB от края поля в пиксели детектора.
func (c MarkerConfig) InsetFor(acq *entity.Acquisition) Inset {
	var in Inset
	mag := acq.Magnification()
	if acq.Spacing.Col > 0 {
		in.X = c.InsetMM * mag / acq.Spacing.Col
	}
	if acq.Spacing.Row > 0 {
		in.Y = c.InsetMM * mag / acq.Spacing.Row
	}
	return in
}

// PipelineConfig неизменяемые настройки прогона
type PipelineConfig struct {
	Tolerance entity.ToleranceSpec
	Markers   MarkerConfig
	Workers   int
}

// CoincidenceService прогоняет снимки через поиск маркеров, анализ поля,
// нормализацию и оценку совпадения.
type CoincidenceService struct {
	localizer port.MarkerLocalizer
	radiation *RadiationAdapter
	builder   *ReferenceBuilder
	cfg       PipelineConfig
}

// NewCoincidenceService создаёт сервис анализа совпадения полей.
func NewCoincidenceService(localizer port.MarkerLocalizer, analyzer port.FieldAnalyzer, cfg PipelineConfig) *CoincidenceService {
	return &CoincidenceService{
		localizer: localizer,
		radiation: NewRadiationAdapter(analyzer),
		builder:   NewReferenceBuilder(cfg.Markers.AmbiguityWindowDeg),
		cfg:       cfg,
	}
}

// Run обрабатывает все снимки и возвращает полный набор результатов.
// Ошибка возвращается только для неверных допусков или отменённого контекста.
func (s *CoincidenceService) Run(ctx context.Context, acquisitions []*entity.Acquisition) (*entity.ResultSet, error) {
	if err := s.cfg.Tolerance.Validate(); err != nil {
		return nil, err
	}

	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	agg := NewAggregator(len(acquisitions), s.cfg.Tolerance)
	var g errgroup.Group
	g.SetLimit(workers)

	for i, acq := range acquisitions {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			out := s.Process(ctx, i, acq)
			logOutcome(out)
			return agg.Record(i, out)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return agg.ResultSet()
}

// Process обрабатывает один снимок. Ошибки снимка попадают в Outcome.Failure.
func (s *CoincidenceService) Process(ctx context.Context, index int, acq *entity.Acquisition) entity.Outcome {
	out := entity.Outcome{Index: index}
	if acq == nil || acq.Pixels == nil {
		out.Failure = entity.FailureFrom(&entity.InvalidFieldGeometryError{Source: "acquisition", Reason: "empty image"})
		return out
	}

	out.Source = acq.Source
	out.Angle = acq.Angle
	out.Meta = acq.Meta
	overlay := &entity.Overlay{}
	out.Overlay = overlay

	lightPx, lightErr := s.lightField(ctx, acq, overlay)
	radPx, radErr := s.radiation.Extract(ctx, acq.Pixels)
	if radErr == nil {
		overlay.Radiation = &radPx
	}
	if lightErr != nil || radErr != nil {
		// Тип сбоя определяет первая ошибка, в сообщение попадают обе.
		first := lightErr
		if first == nil {
			first = radErr
		}
		out.Failure = entity.FailureFrom(first)
		if lightErr != nil && radErr != nil {
			out.Failure.Message = lightErr.Error() + "; " + radErr.Error()
		}
		return out
	}

	light, err := Normalize(lightPx, acq.Spacing, acq.SID, acq.SAD)
	if err != nil {
		out.Failure = entity.FailureFrom(err)
		return out
	}
	radiation, err := Normalize(radPx, acq.Spacing, acq.SID, acq.SAD)
	if err != nil {
		out.Failure = entity.FailureFrom(err)
		return out
	}

	res := Evaluate(acq.Angle, light, radiation, s.cfg.Tolerance)
	out.Result = &res
	return out
}

// lightField находит маркеры и строит световое поле в пикселях.
func (s *CoincidenceService) lightField(ctx context.Context, acq *entity.Acquisition, overlay *entity.Overlay) (entity.FieldGeometry, error) {
	search := s.cfg.Markers.SearchFor(acq)
	if s.localizer == nil {
		return entity.FieldGeometry{}, &entity.MarkerDetectionError{Expected: search.Expected, Err: errors.New("marker localizer is not configured")}
	}

	markers, err := s.localizer.Locate(ctx, acq.Pixels, search)
	if err != nil {
		return entity.FieldGeometry{}, &entity.MarkerDetectionError{Expected: search.Expected, Err: err}
	}
	if len(markers) < search.Expected {
		overlay.Markers = markers
		return entity.FieldGeometry{}, &entity.MarkerDetectionError{Found: len(markers), Expected: search.Expected}
	}
	markers = strongest(markers, search.Expected)
	overlay.Markers = markers

	g, err := s.builder.Build(markers, acq.Center(), s.cfg.Markers.InsetFor(acq))
	if err != nil {
		return entity.FieldGeometry{}, err
	}
	overlay.Light = &g
	return g, nil
}

// strongest оставляет n кандидатов с наибольшей оценкой; при равенстве сохраняется порядок локализатора.
func strongest(markers []entity.MarkerPoint, n int) []entity.MarkerPoint {
	if len(markers) <= n {
		return markers
	}
	sorted := make([]entity.MarkerPoint, len(markers))
	copy(sorted, markers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	return sorted[:n]
}

func logOutcome(out entity.Outcome) {
	switch {
	case out.Failure != nil:
		log.Printf("acquisition %d (%s, couch %d): %s: %s", out.Index, out.Source, out.Angle, out.Failure.Kind, out.Failure.Message)
	case out.Result != nil:
		log.Printf("acquisition %d (%s, couch %d): %s, max edge offset %.2f mm, center offset %.2f mm",
			out.Index, out.Source, out.Angle, entity.Verdict(out.Result.Pass), out.Result.MaxAbsOffset, out.Result.CenterOffset)
	}
}
