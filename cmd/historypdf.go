package cmd

import (
	"image/color"
	"math"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgpdf"

	"github.com/zalepa/ecourts/court"
)

const (
	pageWidth  = 11 * vg.Inch
	pageHeight = 8.5 * vg.Inch
	pdfMargin  = 0.75 * vg.Inch
)

var (
	chartBlue = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	errorRed  = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// renderPDF writes one timeline page per case.
func renderPDF(path string, series map[string][]listingRecord) error {
	c := vgpdf.New(pageWidth, pageHeight)
	for i, name := range sortedCases(series) {
		if i > 0 {
			c.NextPage()
		}
		if err := drawTimelinePage(c, name, series[name]); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// drawTimelinePage plots listed (1) and not listed (0) per check date;
// failed checks are marked halfway.
func drawTimelinePage(c *vgpdf.Canvas, name string, recs []listingRecord) error {
	var checks, failures plotter.XYs
	labels := make(dateTicks, len(recs))
	for i, rec := range recs {
		labels[i] = court.FormatDate(rec.date)
		switch rec.result.Outcome.(type) {
		case court.Listed:
			checks = append(checks, plotter.XY{X: float64(i), Y: 1})
		case court.NotListed:
			checks = append(checks, plotter.XY{X: float64(i), Y: 0})
		default:
			failures = append(failures, plotter.XY{X: float64(i), Y: 0.5})
		}
	}

	p := plot.New()
	p.Title.Text = "Cause list listings - " + name
	p.Title.TextStyle.Font.Size = vg.Points(12)
	p.BackgroundColor = color.White
	p.Add(plotter.NewGrid())

	if len(checks) > 0 {
		line, err := plotter.NewLine(checks)
		if err != nil {
			return err
		}
		line.Color = chartBlue
		line.Width = vg.Points(1.5)
		line.StepStyle = plotter.MidStep

		scatter, err := plotter.NewScatter(checks)
		if err != nil {
			return err
		}
		scatter.Color = chartBlue
		scatter.Radius = vg.Points(3)
		scatter.Shape = draw.CircleGlyph{}
		p.Add(line, scatter)
	}
	if len(failures) > 0 {
		scatter, err := plotter.NewScatter(failures)
		if err != nil {
			return err
		}
		scatter.Color = errorRed
		scatter.Radius = vg.Points(4)
		scatter.Shape = draw.CrossGlyph{}
		p.Add(scatter)
		p.Legend.Add("check failed", scatter)
	}

	p.X.Tick.Marker = labels
	p.X.Min = -0.5
	p.X.Max = float64(len(recs)) - 0.5
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	p.Y.Min = -0.25
	p.Y.Max = 1.25
	p.Y.Tick.Marker = plot.ConstantTicks([]plot.Tick{
		{Value: 0, Label: "not listed"},
		{Value: 1, Label: "listed"},
	})

	dc := draw.New(c)
	area := draw.Crop(dc, pdfMargin, -pdfMargin, pdfMargin, -pdfMargin)
	p.Draw(area)
	return nil
}

// dateTicks labels x positions with dates, thinning labels past 12.
type dateTicks []string

func (dt dateTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	n := len(dt)
	step := 1
	if n > 12 {
		step = (n + 11) / 12
	}
	for i := 0; i < n; i++ {
		t := plot.Tick{Value: float64(i)}
		if i%step == 0 {
			t.Label = dt[i]
		}
		ticks = append(ticks, t)
	}
	return ticks
}
