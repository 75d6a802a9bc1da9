package report

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgpdf"

	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/entity"
	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/port"
)

var (
	lightColor     = color.RGBA{R: 30, G: 90, B: 220, A: 255}
	radiationColor = color.RGBA{R: 220, G: 30, B: 200, A: 255}
	markerColor    = color.RGBA{R: 250, G: 200, B: 0, A: 255}
)

// PDFRenderer рисует по странице на снимок: изображение, световое и радиационное поле, маркеры.
type PDFRenderer struct {
	Width  vg.Length
	Height vg.Length
}

// NewPDFRenderer создаёт рендерер A4-подобных страниц.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{Width: 8 * vg.Inch, Height: 9 * vg.Inch}
}

// Render пишет многостраничный PDF. acquisitions в порядке rs.Outcomes, допускается nil.
func (r *PDFRenderer) Render(w io.Writer, rs *entity.ResultSet, acquisitions []*entity.Acquisition) error {
	if rs == nil {
		return fmt.Errorf("empty result set")
	}

	c := vgpdf.New(r.Width, r.Height)
	if rs.Len() == 0 {
		p := plot.New()
		p.Title.Text = "No acquisitions"
		p.HideAxes()
		p.Draw(draw.New(c))
	}

	for i, o := range rs.Outcomes {
		var acq *entity.Acquisition
		if i < len(acquisitions) {
			acq = acquisitions[i]
		}

		p, err := outcomePlot(o, acq)
		if err != nil {
			return fmt.Errorf("page %d (%s): %w", i+1, o.Source, err)
		}
		if i > 0 {
			c.NextPage()
		}
		p.Draw(draw.New(c))
	}

	_, err := c.WriteTo(w)
	return err
}

func outcomePlot(o entity.Outcome, acq *entity.Acquisition) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = pageTitle(o)
	p.X.Label.Text = "x (px)"
	p.Y.Label.Text = "y (px, flipped)"

	rows := 0
	if acq != nil && acq.Pixels != nil {
		var cols int
		rows, cols = acq.Pixels.Dims()
		p.Add(plotter.NewImage(grayImage(acq), 0, 0, float64(cols), float64(rows)))
		p.X.Min, p.X.Max = 0, float64(cols)
		p.Y.Min, p.Y.Max = 0, float64(rows)
	}

	if o.Overlay == nil {
		return p, nil
	}
	flip := func(x, y float64) plotter.XY {
		// Строки изображения идут сверху вниз, ось графика — снизу вверх.
		return plotter.XY{X: x + 0.5, Y: float64(rows) - y - 0.5}
	}

	if g := o.Overlay.Light; g != nil {
		if err := addBox(p, *g, flip, lightColor, "light field"); err != nil {
			return nil, err
		}
	}
	if g := o.Overlay.Radiation; g != nil {
		if err := addBox(p, *g, flip, radiationColor, "radiation field"); err != nil {
			return nil, err
		}
	}

	if len(o.Overlay.Markers) > 0 {
		pts := make(plotter.XYs, 0, len(o.Overlay.Markers))
		for _, m := range o.Overlay.Markers {
			pts = append(pts, flip(m.X, m.Y))
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, err
		}
		s.GlyphStyle.Shape = draw.RingGlyph{}
		s.GlyphStyle.Color = markerColor
		s.GlyphStyle.Radius = vg.Points(6)
		p.Add(s)
		p.Legend.Add("markers", s)
	}
	return p, nil
}

// addBox рисует прямоугольник поля пунктиром и отмечает его центр.
func addBox(p *plot.Plot, g entity.FieldGeometry, flip func(x, y float64) plotter.XY, c color.Color, name string) error {
	top := g.Absolute(entity.EdgeTop)
	bottom := g.Absolute(entity.EdgeBottom)
	left := g.Absolute(entity.EdgeLeft)
	right := g.Absolute(entity.EdgeRight)

	box := plotter.XYs{
		flip(left, top), flip(right, top), flip(right, bottom), flip(left, bottom), flip(left, top),
	}
	l, err := plotter.NewLine(box)
	if err != nil {
		return err
	}
	l.LineStyle.Color = c
	l.LineStyle.Width = vg.Points(1.5)
	l.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}

	center, err := plotter.NewScatter(plotter.XYs{flip(g.Center.X, g.Center.Y)})
	if err != nil {
		return err
	}
	center.GlyphStyle.Shape = draw.CrossGlyph{}
	center.GlyphStyle.Color = c
	center.GlyphStyle.Radius = vg.Points(5)

	p.Add(l, center)
	p.Legend.Add(name, l)
	return nil
}

func pageTitle(o entity.Outcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  machine=%s  gantry=%.1f°  couch=%d°", o.Source, valueOr(o.Meta.MachineName, "n/a"), o.Meta.GantryAngle, o.Angle)

	if o.Result == nil {
		b.WriteString("\nFAIL")
		if o.Failure != nil {
			fmt.Fprintf(&b, ": %s: %s", o.Failure.Kind, o.Failure.Message)
		}
		return b.String()
	}

	b.WriteString("\n")
	for i, role := range entity.EdgeRoles {
		if i > 0 {
			b.WriteString("  ")
		}
		e := o.Result.Edge(role)
		fmt.Fprintf(&b, "%s %+.2f mm", role, e.Offset)
	}
	fmt.Fprintf(&b, "  center %.2f mm  %s", o.Result.CenterOffset, entity.Verdict(o.Result.Pass))
	return b.String()
}

// grayImage нормирует яркости в 8 бит.
func grayImage(acq *entity.Acquisition) image.Image {
	rows, cols := acq.Pixels.Dims()
	img := image.NewGray(image.Rect(0, 0, cols, rows))

	data := make([]float64, 0, rows*cols)
	for y := 0; y < rows; y++ {
		data = append(data, acq.Pixels.RawRowView(y)...)
	}
	lo, hi := floats.Min(data), floats.Max(data)
	span := hi - lo
	for i, v := range data {
		var g float64
		if span > 0 && !math.IsNaN(v) {
			g = (v - lo) / span * 255
		}
		img.Pix[i] = uint8(math.Round(g))
	}
	return img
}

func valueOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

var _ port.ReportRenderer = (*PDFRenderer)(nil)
