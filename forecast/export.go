package forecast

import (
	"fmt"
	"image/color"
	"io"

	"github.com/xuri/excelize/v2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ExportSheet is the worksheet name used by WriteXLSX.
const ExportSheet = "Forecast"

// ExportHeaders are the columns of the exported table.
var ExportHeaders = []string{
	"Year",
	"Projected Revenue (Billion USD)",
	"Projected OPEX (Billion USD)",
	"Annual Profit/Loss (Billion USD)",
	"Cumulative Profit/Loss (Billion USD)",
}

// WriteXLSX writes the projection as a spreadsheet with values rounded to
// two decimal places.
func WriteXLSX(p *Projection, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExportSheet); err != nil {
		return err
	}
	for i, h := range ExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(ExportSheet, cell, h); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(ExportSheet, "B", "E", 34); err != nil {
		return err
	}

	for i, year := range p.Years {
		row := []interface{}{
			year,
			round2Float(p.Revenue[i]),
			round2Float(p.Opex[i]),
			round2Float(p.ProfitLoss[i]),
			round2Float(p.Cumulative[i]),
		}
		for j, v := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(ExportSheet, cell, v); err != nil {
				return err
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// WriteChartPNG draws revenue, OPEX and cumulative result per year.
func WriteChartPNG(p *Projection, w io.Writer) error {
	pl := plot.New()
	pl.Title.Text = "Profit & Loss Forecast"
	pl.Title.TextStyle.Font.Size = vg.Points(16)
	pl.X.Label.Text = "Year"
	pl.Y.Label.Text = "Billion USD"

	series := []struct {
		name   string
		values []float64
		color  color.RGBA
	}{
		{"Projected Revenue", p.Revenue, color.RGBA{R: 0, G: 100, B: 200, A: 255}},
		{"Projected OPEX", p.Opex, color.RGBA{R: 200, G: 80, B: 0, A: 255}},
		{"Cumulative Profit/Loss", p.Cumulative, color.RGBA{R: 0, G: 140, B: 60, A: 255}},
	}
	for _, s := range series {
		points := make(plotter.XYs, len(s.values))
		for i, v := range s.values {
			points[i].X = float64(p.Years[i])
			points[i].Y = v
		}
		line, err := plotter.NewLine(points)
		if err != nil {
			return fmt.Errorf("chart %s: %w", s.name, err)
		}
		line.Color = s.color
		line.Width = vg.Points(2)
		pl.Add(line)
		pl.Legend.Add(s.name, line)
	}
	pl.Add(plotter.NewGrid())
	pl.Legend.Top = true

	wt, err := pl.WriterTo(8*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

func round2Float(v float64) float64 {
	d, _ := decimalRound2(v).Float64()
	return d
}
