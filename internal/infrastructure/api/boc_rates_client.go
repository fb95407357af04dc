// Package api contains the HTTP client for the upstream BOC rate feed.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bocwatch/aud-cny-rate-widget/internal/domain/entity"
	"github.com/bocwatch/aud-cny-rate-widget/internal/infrastructure/logger"
)

const (
	defaultBaseURL = "http://localhost:9000"

	// lastRatesPath serves the ten most recent observations, newest first.
	lastRatesPath = "/api/v1/aud-cny/boc/rates/last10"
)

// BOCRatesClient fetches recorded CNY/AUD observations from the rate feed.
// It implements service.RateSource.
type BOCRatesClient struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger
}

// NewBOCRatesClient creates a client for the feed at baseURL. A nil
// httpClient gets a 10 second timeout.
func NewBOCRatesClient(baseURL string, httpClient *http.Client, log logger.Logger) *BOCRatesClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 10 * time.Second,
		}
	}
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &BOCRatesClient{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     log,
	}
}

// FetchLastRates issues a single GET against the last-10 endpoint. There is
// no retry: the contract is exactly one request per call. A non-2xx status
// yields *entity.RequestFailedError; transport and decode failures yield
// *entity.FetchError.
func (c *BOCRatesClient) FetchLastRates(ctx context.Context) ([]entity.RateRecord, error) {
	reqURL := c.baseURL + lastRatesPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &entity.FetchError{Cause: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Add("Accept", "application/json")

	c.logger.Debug("Fetching BOC rates", map[string]interface{}{
		"url": reqURL,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &entity.FetchError{Cause: fmt.Errorf("failed to execute request: %w", err)}
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("Error closing response body", map[string]interface{}{
				"error": closeErr.Error(),
			})
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &entity.FetchError{Cause: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.Warn("Rate feed returned error status", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   string(body),
		})
		return nil, &entity.RequestFailedError{StatusCode: resp.StatusCode}
	}

	var records []entity.RateRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, &entity.FetchError{Cause: fmt.Errorf("failed to decode response: %w", err)}
	}

	c.logger.Debug("Fetched BOC rates", map[string]interface{}{
		"count": len(records),
	})

	return records, nil
}
