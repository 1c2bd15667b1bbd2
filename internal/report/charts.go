package report

import (
	"bytes"
	"errors"
	"fmt"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/classpulse/classpulse/internal/analytics"
)

// ErrNoData means the input has too few points for the chart library to
// render anything meaningful. Callers should skip the chart, not fail.
var ErrNoData = errors.New("report: not enough data for chart")

var ratingLabels = map[int]string{
	1: "Very Confused",
	2: "Somewhat Confused",
	3: "Partially Clear",
	4: "Well Understood",
	5: "Perfectly Clear",
}

// DistributionChartPNG renders the rating distribution as a pie chart.
// Zero-count ratings are skipped because the pie renderer rejects
// zero-value slices.
func DistributionChartPNG(dist map[int]int) ([]byte, error) {
	var values []chart.Value
	for rating := 1; rating <= 5; rating++ {
		n := dist[rating]
		if n == 0 {
			continue
		}
		values = append(values, chart.Value{
			Value: float64(n),
			Label: fmt.Sprintf("%s (%d)", ratingLabels[rating], n),
		})
	}
	if len(values) == 0 {
		return nil, ErrNoData
	}

	pie := chart.PieChart{
		Width:  512,
		Height: 512,
		Values: values,
	}
	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render distribution chart: %w", err)
	}
	return buf.Bytes(), nil
}

// TrendChartPNG renders ratings in submission order as a line chart.
func TrendChartPNG(points []analytics.TrendPoint) ([]byte, error) {
	if len(points) < 2 {
		return nil, ErrNoData
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = float64(i + 1)
		ys[i] = float64(p.Rating)
	}

	graph := chart.Chart{
		Width:  800,
		Height: 360,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: 5},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Rating",
				XValues: xs,
				YValues: ys,
			},
		},
	}
	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render trend chart: %w", err)
	}
	return buf.Bytes(), nil
}
