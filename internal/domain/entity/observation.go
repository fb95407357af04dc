package entity

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// SeriesKind identifies which rate fields a fetched sequence carries. The
// feed serves either a single mid rate per observation or the bank's
// buying/selling pair, never a mixture.
type SeriesKind int

const (
	// SeriesSingle marks observations carrying one mid rate.
	SeriesSingle SeriesKind = iota
	// SeriesBuySell marks observations carrying the buying and selling rates.
	SeriesBuySell
)

// LabelLayout is the display layout for observation time labels (MMM-DD HH:MM).
const LabelLayout = "Jan-02 15:04"

// Observation represents one timestamped CNY/AUD exchange-rate data point.
// Rate is set for SeriesSingle sequences; BuyingRate and SellingRate for
// SeriesBuySell sequences.
type Observation struct {
	Time        time.Time `json:"time"`
	Label       string    `json:"label"`
	Rate        float64   `json:"rate,omitempty"`
	BuyingRate  float64   `json:"buying_rate,omitempty"`
	SellingRate float64   `json:"selling_rate,omitempty"`
}

// RateValue is a float64 that unmarshals from either a JSON number or a
// numeric string. The feed serializes rates as strings.
type RateValue float64

// UnmarshalJSON accepts both `"452.31"` and `452.31`.
func (v *RateValue) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return fmt.Errorf("empty rate value")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid rate value %q: %w", s, err)
	}

	*v = RateValue(f)
	return nil
}

// RateRecord is the wire shape of one observation as served by the feed,
// newest first. Either Rate or the BuyingRate/SellingRate pair is present.
type RateRecord struct {
	Timestamp   string     `json:"timestamp"`
	Rate        *RateValue `json:"rate,omitempty"`
	BuyingRate  *RateValue `json:"buying_rate,omitempty"`
	SellingRate *RateValue `json:"selling_rate,omitempty"`
}

// AxisBounds is the vertical axis range for the rate chart.
type AxisBounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ComputeAxisBounds pads the observed buying/selling range by 0.2% and rounds
// outward, so the plotted lines never touch the chart edge. ok is false for
// an empty sequence.
func ComputeAxisBounds(observations []Observation) (bounds AxisBounds, ok bool) {
	if len(observations) == 0 {
		return AxisBounds{}, false
	}

	lo := math.Inf(1)
	hi := math.Inf(-1)
	for _, o := range observations {
		lo = math.Min(lo, math.Min(o.BuyingRate, o.SellingRate))
		hi = math.Max(hi, math.Max(o.BuyingRate, o.SellingRate))
	}

	return AxisBounds{
		Min: math.Floor(lo * 0.998),
		Max: math.Ceil(hi * 1.002),
	}, true
}
