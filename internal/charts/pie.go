package charts

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// pieChart draws labelled wedges proportional to Values, starting at twelve
// o'clock and going counterclockwise. Each wedge carries its share of the
// total formatted with PercentFormat.
type pieChart struct {
	Labels        []string
	Values        []float64
	PercentFormat string
}

func newPieChart(labels []string, values []float64) (*pieChart, error) {
	if len(labels) != len(values) {
		return nil, fmt.Errorf("pie chart has %d labels for %d values", len(labels), len(values))
	}
	total := 0.0
	for _, v := range values {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("pie chart value %v is not a finite non-negative number", v)
		}
		total += v
	}
	if total == 0 {
		return nil, fmt.Errorf("pie chart values sum to zero")
	}
	return &pieChart{Labels: labels, Values: values, PercentFormat: "%.1f%%"}, nil
}

// Plot implements plot.Plotter
func (pc *pieChart) Plot(c draw.Canvas, plt *plot.Plot) {
	total := 0.0
	for _, v := range pc.Values {
		total += v
	}

	center := c.Center()
	radius := vg.Length(math.Min(float64(c.Max.X-c.Min.X), float64(c.Max.Y-c.Min.Y))) * 0.38

	style := text.Style{
		Color:   color.Black,
		Font:    font.From(plot.DefaultFont, 11),
		XAlign:  draw.XCenter,
		YAlign:  draw.YCenter,
		Handler: plt.TextHandler,
	}

	start := math.Pi / 2
	for i, v := range pc.Values {
		sweep := 2 * math.Pi * v / total

		var wedge vg.Path
		wedge.Move(center)
		wedge.Line(polar(center, radius, start))
		wedge.Arc(center, radius, start, sweep)
		wedge.Close()

		c.SetColor(plotutil.Color(i))
		c.Fill(wedge)
		c.SetColor(color.White)
		c.SetLineWidth(vg.Points(1))
		c.Stroke(wedge)

		mid := start + sweep/2
		c.FillText(style, polar(center, radius*0.6, mid), fmt.Sprintf(pc.PercentFormat, 100*v/total))
		c.FillText(style, polar(center, radius*1.15, mid), pc.Labels[i])

		start += sweep
	}
}

func polar(center vg.Point, r vg.Length, angle float64) vg.Point {
	return vg.Point{
		X: center.X + r*vg.Length(math.Cos(angle)),
		Y: center.Y + r*vg.Length(math.Sin(angle)),
	}
}
