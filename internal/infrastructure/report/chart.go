package report

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/entity"
	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/port"
)

// ChartWriter строит HTML-диаграмму смещений краёв по снимкам.
type ChartWriter struct {
	Title string
}

// NewChartWriter создаёт writer сводной диаграммы.
func NewChartWriter() *ChartWriter {
	return &ChartWriter{Title: "Light / radiation field coincidence"}
}

// Write рисует сгруппированные столбцы: по серии на каждую сторону поля.
func (c *ChartWriter) Write(w io.Writer, rs *entity.ResultSet) error {
	if rs == nil {
		return fmt.Errorf("empty result set")
	}

	labels := make([]string, 0, rs.Len())
	series := make(map[entity.EdgeRole][]opts.BarData, len(entity.EdgeRoles))
	for _, o := range rs.Outcomes {
		labels = append(labels, outcomeLabel(o))
		for _, role := range entity.EdgeRoles {
			d := opts.BarData{Name: role.String()}
			if o.Result != nil {
				d.Value = math.Round(o.Result.Edge(role).Offset*100) / 100
			}
			series[role] = append(series[role], d)
		}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: c.Title, Width: "100%", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title: c.Title,
			Subtitle: fmt.Sprintf("run=%s passed=%d/%d tolerance edge=%.1fmm center=%.1fmm",
				rs.RunID, rs.Passed(), rs.Len(), rs.Tolerance.EdgeToleranceMM, rs.Tolerance.CenterToleranceMM),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10%"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "offset (mm)"}),
	)

	bar.SetXAxis(labels)
	for _, role := range entity.EdgeRoles {
		bar.AddSeries(role.String(), series[role])
	}
	return bar.Render(w)
}

func outcomeLabel(o entity.Outcome) string {
	label := fmt.Sprintf("%s (%d°)", o.Source, o.Angle)
	if o.Result == nil {
		label += " FAIL"
	}
	return label
}

var _ port.ResultWriter = (*ChartWriter)(nil)
