// Package render draws the rate chart image served by the widget.
package render

import (
	"image"
	"image/draw"
	"image/png"
	"io"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/bocwatch/aud-cny-rate-widget/internal/application/service"
	"github.com/bocwatch/aud-cny-rate-widget/internal/domain/entity"
)

const (
	chartWidth  = 760
	chartHeight = 320
)

// WriteChartPNG renders the chronological observation sequence as a PNG line
// chart. Buying/selling sequences render two series with the Y axis pinned to
// the computed bounds; single-rate sequences render one series with the
// chart's default range. An empty sequence produces a blank frame rather than
// an error, so the Ready state always has an image.
func WriteChartPNG(rc *service.RateChart, w io.Writer) error {
	// The chart library needs a nonzero X span; below two points there is no
	// line to draw.
	if len(rc.Observations) < 2 {
		return writeBlankFrame(w)
	}

	times := make([]time.Time, len(rc.Observations))
	for i, o := range rc.Observations {
		times[i] = o.Time
	}

	var series []chart.Series
	if rc.Kind == entity.SeriesBuySell {
		buying := make([]float64, len(rc.Observations))
		selling := make([]float64, len(rc.Observations))
		for i, o := range rc.Observations {
			buying[i] = o.BuyingRate
			selling[i] = o.SellingRate
		}

		series = []chart.Series{
			chart.TimeSeries{
				Name:    "Buying",
				XValues: times,
				YValues: buying,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2.0,
				},
			},
			chart.TimeSeries{
				Name:    "Selling",
				XValues: times,
				YValues: selling,
				Style: chart.Style{
					StrokeColor: chart.ColorRed,
					StrokeWidth: 2.0,
				},
			},
		}
	} else {
		rates := make([]float64, len(rc.Observations))
		for i, o := range rc.Observations {
			rates[i] = o.Rate
		}

		series = []chart.Series{
			chart.TimeSeries{
				Name:    "Rate",
				XValues: times,
				YValues: rates,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2.0,
				},
			},
		}
	}

	yAxis := chart.YAxis{
		Name: "CNY per 100 AUD",
	}
	if rc.HasBounds {
		yAxis.Range = &chart.ContinuousRange{
			Min: rc.Bounds.Min,
			Max: rc.Bounds.Max,
		}
	}

	graph := chart.Chart{
		Width:  chartWidth,
		Height: chartHeight,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat(entity.LabelLayout),
		},
		YAxis:  yAxis,
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph.Render(chart.PNG, w)
}

func writeBlankFrame(w io.Writer) error {
	img := image.NewRGBA(image.Rect(0, 0, chartWidth, chartHeight))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return png.Encode(w, img)
}
