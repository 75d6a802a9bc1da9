package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/entity"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, entity.DefaultTolerance(), cfg.ToleranceSpec())
	require.Equal(t, LocalizerHough, cfg.Markers.Backend)
	require.Equal(t, entity.AngleTag(45), cfg.AngleTable().Lookup("patient_45_couch_001.dcm"))
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, `
tolerance:
  edge_mm: 1.0
  center_mm: 1.5
markers:
  radius_mm: 5
  backend: gocv
processing:
  workers: 2
angles:
  - substring: "lat"
    angle: 270
output:
  pdf: ""
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, entity.ToleranceSpec{EdgeToleranceMM: 1, CenterToleranceMM: 1.5}, cfg.ToleranceSpec())
	require.Equal(t, 5.0, cfg.Markers.RadiusMM)
	require.Equal(t, 0.15, cfg.Markers.RadiusTolerance)
	require.Equal(t, LocalizerGoCV, cfg.Markers.Backend)
	require.Equal(t, 2, cfg.Processing.Workers)
	require.Equal(t, entity.AngleTag(270), cfg.AngleTable().Lookup("LAT_image.dcm"))
	require.Equal(t, entity.AngleTag(0), cfg.AngleTable().Lookup("patient_45_couch_001.dcm"))
	require.Empty(t, cfg.Output.PDF)
	require.Equal(t, "coincidence.csv", cfg.Output.CSV)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "token-1")
	t.Setenv("FACEPHANTOM_EDGE_TOLERANCE_MM", "0.5")
	t.Setenv("FACEPHANTOM_CENTER_TOLERANCE_MM", "0.75")
	t.Setenv("FACEPHANTOM_WORKERS", "3")
	t.Setenv("FACEPHANTOM_LOCALIZER", "GoCV")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "token-1", cfg.Telegram.Token)
	require.Equal(t, 0.5, cfg.Tolerance.EdgeToleranceMM)
	require.Equal(t, 0.75, cfg.Tolerance.CenterToleranceMM)
	require.Equal(t, 3, cfg.Processing.Workers)
	require.Equal(t, LocalizerGoCV, cfg.Markers.Backend)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("FACEPHANTOM_EDGE_TOLERANCE_MM", "-1")
	_, err := Load("")
	require.ErrorIs(t, err, entity.ErrInvalidTolerance)

	t.Setenv("FACEPHANTOM_EDGE_TOLERANCE_MM", "abc")
	_, err = Load("")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		modify func(c *Config)
	}{
		{"backend", func(c *Config) { c.Markers.Backend = "sift" }},
		{"workers", func(c *Config) { c.Processing.Workers = 0 }},
		{"radius", func(c *Config) { c.Markers.RadiusMM = 0 }},
		{"radius tolerance", func(c *Config) { c.Markers.RadiusTolerance = 1 }},
		{"expected", func(c *Config) { c.Markers.Expected = 0 }},
		{"ambiguity window", func(c *Config) { c.Markers.AmbiguityWindowDeg = 45 }},
		{"edge fraction", func(c *Config) { c.Markers.EdgeFraction = 0 }},
		{"gocv dp", func(c *Config) { c.Markers.GoCV.DP = 0.5 }},
		{"gocv accumulator", func(c *Config) { c.Markers.GoCV.AccumulatorThreshold = -1 }},
		{"gocv tile", func(c *Config) { c.Markers.GoCV.TileSize = 0 }},
		{"iterations", func(c *Config) { c.Field.Iterations = 0 }},
		{"angle rule", func(c *Config) { c.Angles = []entity.AngleRule{{Angle: 90}} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			require.NoError(t, cfg.Validate())
			tc.modify(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_GoCVSection(t *testing.T) {
	path := writeConfig(t, `
markers:
  backend: gocv
  gocv:
    dp: 1.5
    canny_threshold: 30
    accumulator_threshold: 25
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, GoCVConfig{
		DP:                   1.5,
		CannyThreshold:       30,
		AccumulatorThreshold: 25,
		ClipLimit:            2.0,
		TileSize:             8,
		MinImageSide:         64,
	}, cfg.Markers.GoCV)
}
