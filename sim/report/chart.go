package report

import (
	"fmt"
	"image/color"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/resistance-sim/resistance-sim/sim"
	"github.com/resistance-sim/resistance-sim/sim/trace"
)

// ChartOptions sizes the rendered population chart.
type ChartOptions struct {
	Width  int
	Height int
	Title  string
}

// DefaultChartOptions returns a 1024x512 untitled chart.
func DefaultChartOptions() ChartOptions {
	return ChartOptions{Width: 1024, Height: 512}
}

func toDrawing(c color.Color) drawing.Color {
	r, g, b, a := c.RGBA()
	return drawing.Color{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}

// populationSeries builds one series per tracked quantity: total, susceptible,
// persister and one per drug.
func populationSeries(st *trace.SimulationTrace) ([]chart.Series, float64) {
	n := len(st.Days)
	days := make([]float64, n)
	total := make([]float64, n)
	susceptible := make([]float64, n)
	persister := make([]float64, n)
	resistant := make(map[string][]float64, len(st.Config.Drugs))
	for _, d := range st.Config.Drugs {
		resistant[d] = make([]float64, n)
	}
	yMax := 0.0
	for i, r := range st.Days {
		days[i] = float64(r.Day)
		total[i] = float64(r.Total)
		susceptible[i] = float64(r.Susceptible)
		persister[i] = float64(r.Persister)
		for _, d := range st.Config.Drugs {
			resistant[d][i] = float64(r.ResistantTo(d))
		}
		if total[i] > yMax {
			yMax = total[i]
		}
	}

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    "Total",
			XValues: days,
			YValues: total,
			Style:   chart.Style{StrokeColor: drawing.ColorBlack, StrokeWidth: 2.0},
		},
		chart.ContinuousSeries{
			Name:    "Susceptible",
			XValues: days,
			YValues: susceptible,
			Style:   chart.Style{StrokeColor: toDrawing(ColorSusceptible), StrokeWidth: 2.0},
		},
		chart.ContinuousSeries{
			Name:    "Persister",
			XValues: days,
			YValues: persister,
			Style:   chart.Style{StrokeColor: toDrawing(ColorPersister), StrokeWidth: 2.0},
		},
	}
	for _, d := range st.Config.Drugs {
		series = append(series, chart.ContinuousSeries{
			Name:    "Res-" + d,
			XValues: days,
			YValues: resistant[d],
			Style:   chart.Style{StrokeColor: toDrawing(DrugColor(sim.DrugID(d))), StrokeWidth: 2.0},
		})
	}
	return series, yMax
}

// RenderChart draws the per-day population series as a PNG line chart.
// At least two recorded days are required.
func RenderChart(w io.Writer, st *trace.SimulationTrace, opts ChartOptions) error {
	if st == nil || len(st.Days) < 2 {
		return fmt.Errorf("rendering chart: need at least 2 recorded days")
	}
	series, yMax := populationSeries(st)
	if yMax < 1 {
		yMax = 1
	}
	first, last := st.Days[0].Day, st.Days[len(st.Days)-1].Day

	graph := chart.Chart{
		Title:  opts.Title,
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Right: 160},
		},
		XAxis: chart.XAxis{
			Name:  "Day",
			Style: chart.Style{FontSize: 10.0},
			Range: &chart.ContinuousRange{Min: float64(first), Max: float64(last)},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
		},
		YAxis: chart.YAxis{
			Name:  "Bacteria",
			Style: chart.Style{FontSize: 10.0},
			Range: &chart.ContinuousRange{Min: 0, Max: yMax * 1.05},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.0f", v.(float64))
			},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	return nil
}
