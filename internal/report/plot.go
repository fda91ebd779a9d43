package report

import (
	"bufio"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/Agrid-Dev/twozone/internal/study"
	"github.com/Agrid-Dev/twozone/internal/thermal"
)

// Comfort band drawn behind the monitored-zone curves.
const (
	ComfortLow  = 23.0
	ComfortHigh = 24.0
)

var ErrEmptyReport = errors.New("report has no runs to plot")

var caseColors = map[thermal.Case]color.Color{
	thermal.CasePassive: color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	thermal.CaseForced:  color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
}

func caseLabel(p thermal.Params, c thermal.Case) string {
	switch c {
	case thermal.CasePassive:
		return "passive (no fan)"
	case thermal.CaseForced:
		return fmt.Sprintf("forced (fan %.0f W)", p.Forced.AuxiliaryHeat)
	default:
		return c.String()
	}
}

// NewPlot builds the monitored-zone comparison chart of r against a minute axis.
func NewPlot(r *study.Report) (*plot.Plot, error) {
	if len(r.Runs) == 0 {
		return nil, ErrEmptyReport
	}
	p := r.Params
	reg := p.Regulator

	pl := plot.New()
	pl.Title.Text = fmt.Sprintf("%.1f kW cooler @ %.0f C setpoint: passive vs forced exchange", reg.MaxOutput/1000, reg.Setpoint)
	pl.X.Label.Text = "Time (minutes)"
	pl.Y.Label.Text = "Zone 2 temperature (C)"
	pl.Legend.Top = true

	var end float64
	for _, run := range r.Runs {
		if m := run.Minutes(); len(m) > 0 && m[len(m)-1] > end {
			end = m[len(m)-1]
		}
	}

	band, err := plotter.NewPolygon(plotter.XYs{
		{X: 0, Y: ComfortLow}, {X: end, Y: ComfortLow},
		{X: end, Y: ComfortHigh}, {X: 0, Y: ComfortHigh},
	})
	if err != nil {
		return nil, err
	}
	band.Color = color.NRGBA{G: 0x80, A: 0x1a}
	band.LineStyle.Width = 0
	pl.Add(band)
	pl.Legend.Add(fmt.Sprintf("comfort band (%.0f-%.0f C)", ComfortLow, ComfortHigh), band)

	setpoint, err := plotter.NewLine(plotter.XYs{{X: 0, Y: reg.Setpoint}, {X: end, Y: reg.Setpoint}})
	if err != nil {
		return nil, err
	}
	setpoint.LineStyle.Color = color.Gray{Y: 0x80}
	setpoint.LineStyle.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
	pl.Add(setpoint)
	pl.Legend.Add(fmt.Sprintf("setpoint (%.0f C)", reg.Setpoint), setpoint)

	pl.Add(plotter.NewGrid())

	for _, c := range thermal.Cases() {
		run, ok := r.Runs[c]
		if !ok {
			continue
		}
		minutes := run.Minutes()
		pts := make(plotter.XYs, run.Len())
		for i := range pts {
			pts[i].X = minutes[i]
			pts[i].Y = run.Zone2[i]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("%s series: %w", c, err)
		}
		line.LineStyle.Width = vg.Points(2)
		line.LineStyle.Color = caseColors[c]
		pl.Add(line)

		label := caseLabel(p, c)
		if s, ok := r.Summaries[c]; ok {
			label = fmt.Sprintf("%s, steady %.1f C", label, s.Zone2)
		}
		pl.Legend.Add(label, line)
	}

	pl.Y.Min = reg.Setpoint - 1
	pl.Y.Max = max(p.Ambient, p.Initial) + 1
	return pl, nil
}

// WritePlot renders the chart of r as PNG.
func WritePlot(w io.Writer, r *study.Report) error {
	pl, err := NewPlot(r)
	if err != nil {
		return err
	}
	c := vgimg.NewWith(
		vgimg.UseWH(10*vg.Inch, 6*vg.Inch),
		vgimg.UseDPI(96),
	)
	pl.Draw(draw.New(c))

	bw := bufio.NewWriter(w)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(bw); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return bw.Flush()
}

// SavePlot writes the chart of r to path, creating parent directories.
func SavePlot(path string, r *study.Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create plot dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := WritePlot(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
