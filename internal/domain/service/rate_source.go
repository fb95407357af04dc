package service

import (
	"context"

	"github.com/bocwatch/aud-cny-rate-widget/internal/domain/entity"
)

// RateSource defines the interface for the upstream BOC rate feed.
type RateSource interface {
	// FetchLastRates retrieves the most recent observations, newest first.
	FetchLastRates(ctx context.Context) ([]entity.RateRecord, error)
}
