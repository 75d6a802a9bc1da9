package container

import (
	"fmt"

	"github.com/alex-hastava/FacePhantom-QA-Tool/config"
	app "github.com/alex-hastava/FacePhantom-QA-Tool/internal/application"
	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/port"
	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/infrastructure/dicomio"
	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/infrastructure/fieldanalysis"
	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/infrastructure/report"
	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/infrastructure/storage"
	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/infrastructure/vision"
)

type Container struct {
	UserService        *app.UserService
	CoincidenceService *app.CoincidenceService
	QAService          *app.QAService
	Loader             port.AcquisitionLoader

	CSV   port.ResultWriter
	JSON  port.ResultWriter
	Chart port.ResultWriter
	PDF   port.ReportRenderer
}

func New(cfg *config.Config, repo *storage.MemorySessionRepository) (*Container, error) {
	localizer, err := NewLocalizer(cfg.Markers)
	if err != nil {
		return nil, err
	}
	analyzer := fieldanalysis.NewProfileAnalyzer(cfg.Field.Band, cfg.Field.Iterations)

	coincidence := app.NewCoincidenceService(localizer, analyzer, PipelineConfig(cfg))
	loader := dicomio.NewLoader(cfg.AngleTable())
	csvWriter := report.NewCSVWriter()
	pdf := report.NewPDFRenderer()

	userService := app.NewUserService(repo)
	qaService := app.NewQAService(userService, repo, loader, coincidence, csvWriter, pdf)

	return &Container{
		UserService:        userService,
		CoincidenceService: coincidence,
		QAService:          qaService,
		Loader:             loader,
		CSV:                csvWriter,
		JSON:               report.NewJSONWriter(),
		Chart:              report.NewChartWriter(),
		PDF:                pdf,
	}, nil
}

// NewLocalizer выбирает бэкенд поиска маркеров.
func NewLocalizer(cfg config.MarkersConfig) (port.MarkerLocalizer, error) {
	switch cfg.Backend {
	case config.LocalizerHough, "":
		return vision.NewHoughLocalizer(cfg.BlurKernel, cfg.EdgeFraction), nil
	case config.LocalizerGoCV:
		return vision.NewGoCVLocalizer(GoCVParams(cfg)), nil
	default:
		return nil, fmt.Errorf("unknown marker backend %q", cfg.Backend)
	}
}

// GoCVParams переводит секцию markers.gocv в параметры OpenCV-локализатора.
func GoCVParams(cfg config.MarkersConfig) vision.GoCVParams {
	g := cfg.GoCV
	return vision.GoCVParams{
		ClipLimit:            g.ClipLimit,
		TileSize:             g.TileSize,
		BlurKernel:           cfg.BlurKernel,
		DP:                   g.DP,
		CannyThreshold:       g.CannyThreshold,
		AccumulatorThreshold: g.AccumulatorThreshold,
		MinImageSide:         g.MinImageSide,
	}
}

// PipelineConfig переводит настройки файла в параметры прогона.
func PipelineConfig(cfg *config.Config) app.PipelineConfig {
	m := cfg.Markers
	return app.PipelineConfig{
		Tolerance: cfg.ToleranceSpec(),
		Markers: app.MarkerConfig{
			RadiusMM:           m.RadiusMM,
			RadiusTolerance:    m.RadiusTolerance,
			SeparationFactor:   m.SeparationFactor,
			Sensitivity:        m.Sensitivity,
			Expected:           m.Expected,
			InsetMM:            m.InsetMM,
			AmbiguityWindowDeg: m.AmbiguityWindowDeg,
		},
		Workers: cfg.Processing.Workers,
	}
}
