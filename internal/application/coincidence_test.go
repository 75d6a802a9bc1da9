package app

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/entity"
)

func TestCoincidenceService_Run(t *testing.T) {
	localizer := newFakeLocalizer(squareMarkers(30))
	analyzer := newFakeAnalyzer(squareEdges(30))
	svc := NewCoincidenceService(localizer, analyzer, testPipelineConfig())

	acqs := []*entity.Acquisition{
		newAcquisition("field_45_couch.dcm"),
		newAcquisition("field_90m_couch.dcm"),
		newAcquisition("field_open.dcm"),
	}
	// на втором снимке найдено только три маркера
	localizer.set(acqs[1], squareMarkers(30)[:3])
	// на третьем радиационное поле шире справа на 3 мм
	wide := squareEdges(30)
	wide.Right += 3
	analyzer.set(acqs[2], wide)

	rs, err := svc.Run(context.Background(), acqs)
	require.NoError(t, err)
	require.Equal(t, 3, rs.Len())

	first := rs.Outcomes[0]
	require.Equal(t, "field_45_couch.dcm", first.Source)
	require.Equal(t, entity.AngleTag(45), first.Angle)
	require.Nil(t, first.Failure)
	require.True(t, first.Result.Pass)
	require.Zero(t, first.Result.MaxAbsOffset)
	require.NotNil(t, first.Overlay.Light)
	require.NotNil(t, first.Overlay.Radiation)
	require.Len(t, first.Overlay.Markers, 4)

	second := rs.Outcomes[1]
	require.Nil(t, second.Result)
	require.Equal(t, entity.FailureMarkerDetection, second.Failure.Kind)
	require.Contains(t, second.Failure.Message, "found 3 markers")
	require.Equal(t, entity.AngleTag(-90), second.Angle)

	third := rs.Outcomes[2]
	require.False(t, third.Result.Pass)
	require.InDelta(t, 3.0, third.Result.Edge(entity.EdgeRight).Offset, 1e-9)
	require.True(t, third.Result.Edge(entity.EdgeLeft).Pass)

	require.Equal(t, 1, rs.Passed())
	require.Equal(t, 2, rs.Failed())
}

func TestCoincidenceService_Process_MarkerCount(t *testing.T) {
	localizer := newFakeLocalizer(squareMarkers(30)[:3])
	svc := NewCoincidenceService(localizer, newFakeAnalyzer(squareEdges(30)), testPipelineConfig())

	out := svc.Process(context.Background(), 0, newAcquisition("a.dcm"))
	require.NotNil(t, out.Failure)
	require.Equal(t, entity.FailureMarkerDetection, out.Failure.Kind)
	require.Len(t, out.Overlay.Markers, 3)
	// радиационное поле всё равно попадает в наложение для отчёта
	require.NotNil(t, out.Overlay.Radiation)
}

func TestCoincidenceService_InvalidToleranceIsFatal(t *testing.T) {
	localizer := newFakeLocalizer(squareMarkers(30))
	cfg := testPipelineConfig()
	cfg.Tolerance.EdgeToleranceMM = 0
	svc := NewCoincidenceService(localizer, newFakeAnalyzer(squareEdges(30)), cfg)

	rs, err := svc.Run(context.Background(), []*entity.Acquisition{newAcquisition("a.dcm")})
	require.ErrorIs(t, err, entity.ErrInvalidTolerance)
	require.Nil(t, rs)
	require.Zero(t, localizer.calls.Load())
}

func TestCoincidenceService_AllFailuresStillProduceResultSet(t *testing.T) {
	localizer := newFakeLocalizer(nil)
	analyzer := newFakeAnalyzer(entity.FieldEdges{})
	analyzer.err = errors.New("flat image")
	svc := NewCoincidenceService(localizer, analyzer, testPipelineConfig())

	acqs := []*entity.Acquisition{newAcquisition("a.dcm"), nil, newAcquisition("c.dcm")}
	rs, err := svc.Run(context.Background(), acqs)
	require.NoError(t, err)
	require.Equal(t, 3, rs.Len())
	require.Zero(t, rs.Passed())

	require.Equal(t, entity.FailureMarkerDetection, rs.Outcomes[0].Failure.Kind)
	require.Contains(t, rs.Outcomes[0].Failure.Message, "flat image")
	require.Equal(t, entity.FailureInvalidGeometry, rs.Outcomes[1].Failure.Kind)
}

func TestCoincidenceService_RadiationFailure(t *testing.T) {
	localizer := newFakeLocalizer(squareMarkers(30))
	crossed := squareEdges(30)
	crossed.Left, crossed.Right = crossed.Right, crossed.Left
	svc := NewCoincidenceService(localizer, newFakeAnalyzer(crossed), testPipelineConfig())

	out := svc.Process(context.Background(), 0, newAcquisition("a.dcm"))
	require.Equal(t, entity.FailureInvalidGeometry, out.Failure.Kind)
	require.NotNil(t, out.Overlay.Light)
}

func TestCoincidenceService_LocalizerError(t *testing.T) {
	localizer := newFakeLocalizer(nil)
	localizer.err = errors.New("hough failed")
	svc := NewCoincidenceService(localizer, newFakeAnalyzer(squareEdges(30)), testPipelineConfig())

	out := svc.Process(context.Background(), 0, newAcquisition("a.dcm"))
	require.Equal(t, entity.FailureMarkerDetection, out.Failure.Kind)
	require.Contains(t, out.Failure.Message, "hough failed")
}

func TestCoincidenceService_OrderIndependentOfCompletion(t *testing.T) {
	localizer := newFakeLocalizer(squareMarkers(30))
	svc := NewCoincidenceService(localizer, newFakeAnalyzer(squareEdges(30)), testPipelineConfig())

	const n = 8
	acqs := make([]*entity.Acquisition, n)
	for i := range acqs {
		acqs[i] = newAcquisition(fmt.Sprintf("img_%d.dcm", i))
		// первые снимки обрабатываются дольше последних
		localizer.delays[acqs[i].Pixels] = time.Duration(n-i) * 3 * time.Millisecond
	}

	rs, err := svc.Run(context.Background(), acqs)
	require.NoError(t, err)
	require.Equal(t, n, rs.Len())
	for i, o := range rs.Outcomes {
		require.Equal(t, fmt.Sprintf("img_%d.dcm", i), o.Source)
		require.Equal(t, i, o.Index)
	}
}

func TestCoincidenceService_CancelledContext(t *testing.T) {
	svc := NewCoincidenceService(newFakeLocalizer(squareMarkers(30)), newFakeAnalyzer(squareEdges(30)), testPipelineConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Run(ctx, []*entity.Acquisition{newAcquisition("a.dcm")})
	require.ErrorIs(t, err, context.Canceled)
}

func TestMarkerConfig_SearchFor(t *testing.T) {
	acq := newAcquisition("a.dcm")
	acq.Spacing = entity.Spacing{Row: 0.4, Col: 0.4}
	acq.SID = 1500
	acq.SAD = 1000

	search := DefaultMarkerConfig().SearchFor(acq)
	require.InDelta(t, 28.125*0.85, search.MinRadius, 1e-9)
	require.InDelta(t, 28.125*1.15, search.MaxRadius, 1e-9)
	require.InDelta(t, 28.125*1.8, search.MinSeparation, 1e-9)
	require.Equal(t, 4, search.Expected)

	inset := DefaultMarkerConfig().InsetFor(acq)
	require.InDelta(t, 56.25, inset.X, 1e-9)
	require.InDelta(t, 56.25, inset.Y, 1e-9)
}

func TestCoincidenceService_KeepsStrongestMarkers(t *testing.T) {
	// Слабые отклики на диагоналях (углы поля) идут первыми.
	markers := []entity.MarkerPoint{
		{X: 20, Y: 20, Radius: 5, Score: 0.4},
		{X: 80, Y: 20, Radius: 5, Score: 0.4},
		{X: 20, Y: 80, Radius: 5, Score: 0.4},
		{X: 80, Y: 80, Radius: 5, Score: 0.4},
	}
	for _, m := range squareMarkers(30) {
		m.Score = 2.6
		markers = append(markers, m)
	}
	svc := NewCoincidenceService(newFakeLocalizer(markers), newFakeAnalyzer(squareEdges(30)), testPipelineConfig())

	out := svc.Process(context.Background(), 0, newAcquisition("corners.dcm"))
	require.Nil(t, out.Failure)
	require.True(t, out.Result.Pass)
	require.Len(t, out.Overlay.Markers, 4)
	for _, m := range out.Overlay.Markers {
		require.Equal(t, 2.6, m.Score)
	}
}

func TestStrongest(t *testing.T) {
	markers := []entity.MarkerPoint{{X: 1, Score: 1}, {X: 2, Score: 3}, {X: 3, Score: 1}, {X: 4, Score: 2}}

	got := strongest(markers, 3)
	require.Equal(t, []entity.MarkerPoint{{X: 2, Score: 3}, {X: 4, Score: 2}, {X: 1, Score: 1}}, got)
	require.Equal(t, 1.0, markers[0].X, "input is not reordered")
	require.Len(t, strongest(markers[:2], 4), 2)
}
