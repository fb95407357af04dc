// Package service contains the application services of the widget server.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bocwatch/aud-cny-rate-widget/internal/domain/entity"
	domainservice "github.com/bocwatch/aud-cny-rate-widget/internal/domain/service"
	"github.com/bocwatch/aud-cny-rate-widget/internal/infrastructure/logger"
)

// RateChart is the transformed observation sequence in chronological order,
// ready for rendering.
type RateChart struct {
	Kind         entity.SeriesKind
	Observations []entity.Observation
	Bounds       entity.AxisBounds
	HasBounds    bool
}

// ChartService builds the chart model from the upstream rate feed.
type ChartService struct {
	source domainservice.RateSource
	logger logger.Logger
}

// NewChartService creates a new chart service
func NewChartService(source domainservice.RateSource, log logger.Logger) *ChartService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &ChartService{
		source: source,
		logger: log,
	}
}

// Timestamp layouts accepted from the feed. RFC3339 is the documented form;
// the remaining layouts cover observed historical payloads.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// BuildChart fetches the last recorded observations and transforms them for
// display: rates coerced to floats, labels computed, order reversed from
// newest-first to chronological, and the padded axis bounds computed for
// buying/selling sequences. Transform failures surface as *entity.FetchError;
// fetch errors pass through unchanged.
func (s *ChartService) BuildChart(ctx context.Context) (*RateChart, error) {
	records, err := s.source.FetchLastRates(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch observations", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}

	chart := &RateChart{
		Observations: make([]entity.Observation, 0, len(records)),
	}

	for i, rec := range records {
		obs, kind, err := transformRecord(rec)
		if err != nil {
			s.logger.Error("Failed to transform observation", map[string]interface{}{
				"index": i,
				"error": err.Error(),
			})
			return nil, &entity.FetchError{Cause: fmt.Errorf("record %d: %w", i, err)}
		}

		if i == 0 {
			chart.Kind = kind
		} else if kind != chart.Kind {
			return nil, &entity.FetchError{Cause: fmt.Errorf("record %d: mixed rate variants in response", i)}
		}

		chart.Observations = append(chart.Observations, obs)
	}

	// The feed is newest first; the chart reads left to right chronologically.
	for i, j := 0, len(chart.Observations)-1; i < j; i, j = i+1, j-1 {
		chart.Observations[i], chart.Observations[j] = chart.Observations[j], chart.Observations[i]
	}

	if chart.Kind == entity.SeriesBuySell {
		chart.Bounds, chart.HasBounds = entity.ComputeAxisBounds(chart.Observations)
	}

	s.logger.Info("Chart built", map[string]interface{}{
		"observations": len(chart.Observations),
		"buy_sell":     chart.Kind == entity.SeriesBuySell,
		"has_bounds":   chart.HasBounds,
	})

	return chart, nil
}

func transformRecord(rec entity.RateRecord) (entity.Observation, entity.SeriesKind, error) {
	ts, err := parseTimestamp(rec.Timestamp)
	if err != nil {
		return entity.Observation{}, 0, err
	}

	obs := entity.Observation{
		Time:  ts,
		Label: ts.Format(entity.LabelLayout),
	}

	switch {
	case rec.BuyingRate != nil && rec.SellingRate != nil:
		obs.BuyingRate = float64(*rec.BuyingRate)
		obs.SellingRate = float64(*rec.SellingRate)
		return obs, entity.SeriesBuySell, nil
	case rec.Rate != nil:
		obs.Rate = float64(*rec.Rate)
		return obs, entity.SeriesSingle, nil
	default:
		return entity.Observation{}, 0, fmt.Errorf("no rate fields present")
	}
}

func parseTimestamp(raw string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse timestamp %q", raw)
}
