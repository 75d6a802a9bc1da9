package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/entity"
)

// Бэкенды поиска маркеров
const (
	LocalizerHough = "hough"
	LocalizerGoCV  = "gocv"
)

// MarkersConfig параметры фантома и поиска BB-маркеров
type MarkersConfig struct {
	RadiusMM           float64    `yaml:"radius_mm"`
	RadiusTolerance    float64    `yaml:"radius_tolerance"`
	SeparationFactor   float64    `yaml:"separation_factor"`
	Expected           int        `yaml:"expected"`
	InsetMM            float64    `yaml:"inset_mm"`
	AmbiguityWindowDeg float64    `yaml:"ambiguity_window_deg"`
	Sensitivity        float64    `yaml:"sensitivity"`
	EdgeFraction       float64    `yaml:"edge_fraction"`
	BlurKernel         int        `yaml:"blur_kernel"`
	Backend            string     `yaml:"backend"`
	GoCV               GoCVConfig `yaml:"gocv"`
}

// GoCVConfig параметры OpenCV-бэкенда; accumulator_threshold 0 — порог из sensitivity
type GoCVConfig struct {
	DP                   float64 `yaml:"dp"`
	CannyThreshold       float64 `yaml:"canny_threshold"`
	AccumulatorThreshold float64 `yaml:"accumulator_threshold"`
	ClipLimit            float64 `yaml:"clip_limit"`
	TileSize             int     `yaml:"tile_size"`
	MinImageSide         int     `yaml:"min_image_side"`
}

// FieldConfig параметры анализатора радиационного поля
type FieldConfig struct {
	Band       int `yaml:"band"`
	Iterations int `yaml:"iterations"`
}

type ProcessingConfig struct {
	Workers int `yaml:"workers"`
}

// OutputConfig каталог и имена файлов отчётов; пустое имя отключает файл
type OutputConfig struct {
	Dir   string `yaml:"dir"`
	CSV   string `yaml:"csv"`
	JSON  string `yaml:"json"`
	PDF   string `yaml:"pdf"`
	Chart string `yaml:"chart"`
}

type TelegramConfig struct {
	Token string `yaml:"token"`
}

type Config struct {
	Tolerance  entity.ToleranceSpec `yaml:"tolerance"`
	Markers    MarkersConfig        `yaml:"markers"`
	Field      FieldConfig          `yaml:"field"`
	Processing ProcessingConfig     `yaml:"processing"`
	Angles     []entity.AngleRule   `yaml:"angles"`
	Output     OutputConfig         `yaml:"output"`
	Telegram   TelegramConfig       `yaml:"telegram"`
}

// DefaultConfig настройки по умолчанию для фантома FacePhantom.
func DefaultConfig() *Config {
	return &Config{
		Tolerance: entity.DefaultTolerance(),
		Markers: MarkersConfig{
			RadiusMM:           7.5,
			RadiusTolerance:    0.15,
			SeparationFactor:   1.8,
			Expected:           4,
			InsetMM:            15,
			AmbiguityWindowDeg: 10,
			Sensitivity:        1.0,
			EdgeFraction:       0.1,
			BlurKernel:         5,
			Backend:            LocalizerHough,
			GoCV: GoCVConfig{
				DP:             1.2,
				CannyThreshold: 20,
				ClipLimit:      2.0,
				TileSize:       8,
				MinImageSide:   64,
			},
		},
		Field: FieldConfig{
			Band:       5,
			Iterations: 3,
		},
		Processing: ProcessingConfig{
			Workers: runtime.NumCPU(),
		},
		Angles: entity.DefaultAngleRules(),
		Output: OutputConfig{
			Dir:   "out",
			CSV:   "coincidence.csv",
			JSON:  "coincidence.json",
			PDF:   "coincidence.pdf",
			Chart: "coincidence.html",
		},
	}
}

// Load читает .env, затем YAML-файл (если есть), затем переменные окружения.
func Load(path string) (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		c.Telegram.Token = v
	}
	if err := envFloat("FACEPHANTOM_EDGE_TOLERANCE_MM", &c.Tolerance.EdgeToleranceMM); err != nil {
		return err
	}
	if err := envFloat("FACEPHANTOM_CENTER_TOLERANCE_MM", &c.Tolerance.CenterToleranceMM); err != nil {
		return err
	}
	if v := os.Getenv("FACEPHANTOM_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FACEPHANTOM_WORKERS: %w", err)
		}
		c.Processing.Workers = n
	}
	if v := os.Getenv("FACEPHANTOM_LOCALIZER"); v != "" {
		c.Markers.Backend = strings.ToLower(strings.TrimSpace(v))
	}
	return nil
}

func envFloat(key string, dst *float64) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

// Validate проверяет настройки перед запуском.
func (c *Config) Validate() error {
	if err := c.Tolerance.Validate(); err != nil {
		return err
	}
	if c.Processing.Workers < 1 {
		return fmt.Errorf("processing.workers must be positive, got %d", c.Processing.Workers)
	}

	m := c.Markers
	switch m.Backend {
	case LocalizerHough, LocalizerGoCV:
	default:
		return fmt.Errorf("unknown marker backend %q", m.Backend)
	}
	if !positive(m.RadiusMM) || !positive(m.SeparationFactor) {
		return errors.New("markers.radius_mm and markers.separation_factor must be positive")
	}
	if m.RadiusTolerance < 0 || m.RadiusTolerance >= 1 {
		return fmt.Errorf("markers.radius_tolerance must be in [0, 1), got %v", m.RadiusTolerance)
	}
	if m.Expected < 1 {
		return fmt.Errorf("markers.expected must be positive, got %d", m.Expected)
	}
	if m.InsetMM < 0 || m.AmbiguityWindowDeg < 0 || m.AmbiguityWindowDeg >= 45 {
		return errors.New("markers.inset_mm must be non-negative and markers.ambiguity_window_deg in [0, 45)")
	}
	if m.EdgeFraction <= 0 || m.EdgeFraction >= 1 {
		return fmt.Errorf("markers.edge_fraction must be in (0, 1), got %v", m.EdgeFraction)
	}
	g := m.GoCV
	if g.DP < 1 || !positive(g.CannyThreshold) || g.AccumulatorThreshold < 0 {
		return errors.New("markers.gocv: dp must be >= 1, canny_threshold positive, accumulator_threshold non-negative")
	}
	if !positive(g.ClipLimit) || g.TileSize < 1 || g.MinImageSide < 3 {
		return errors.New("markers.gocv: clip_limit and tile_size must be positive, min_image_side at least 3")
	}
	if c.Field.Iterations < 1 || c.Field.Band < 0 {
		return errors.New("field.iterations must be positive and field.band non-negative")
	}
	for _, r := range c.Angles {
		if r.Substring == "" {
			return errors.New("angle rule with empty substring")
		}
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// ToleranceSpec допуски прогона (копия).
func (c *Config) ToleranceSpec() entity.ToleranceSpec {
	return c.Tolerance
}

// AngleTable неизменяемая таблица углов стола.
func (c *Config) AngleTable() entity.AngleTable {
	return entity.NewAngleTable(c.Angles)
}
