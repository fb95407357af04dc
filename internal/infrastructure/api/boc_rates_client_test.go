package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/bocwatch/aud-cny-rate-widget/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchLastRates(t *testing.T) {
	ctx := context.Background()

	t.Run("Successful fetch", func(t *testing.T) {
		var requests int64

		mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt64(&requests, 1)

			assert.Equal(t, "/api/v1/aud-cny/boc/rates/last10", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Accept"))

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`[
				{"timestamp": "2024-03-08T11:00:00Z", "buying_rate": "470.15", "selling_rate": "473.52"},
				{"timestamp": "2024-03-08T10:30:00Z", "buying_rate": "469.88", "selling_rate": 473.10}
			]`))
		}))
		defer mockServer.Close()

		client := NewBOCRatesClient(mockServer.URL, nil, nil)

		records, err := client.FetchLastRates(ctx)

		require.NoError(t, err)
		require.Len(t, records, 2)

		// Newest first, rates coerced whether quoted or not
		assert.Equal(t, "2024-03-08T11:00:00Z", records[0].Timestamp)
		assert.Equal(t, 470.15, float64(*records[0].BuyingRate))
		assert.Equal(t, 473.10, float64(*records[1].SellingRate))

		// Exactly one request per call
		assert.Equal(t, int64(1), atomic.LoadInt64(&requests))
	})

	t.Run("Non-2xx status", func(t *testing.T) {
		mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error": "upstream database unavailable"}`))
		}))
		defer mockServer.Close()

		client := NewBOCRatesClient(mockServer.URL, nil, nil)

		records, err := client.FetchLastRates(ctx)

		assert.Nil(t, records)

		var reqErr *entity.RequestFailedError
		require.True(t, errors.As(err, &reqErr))
		assert.Equal(t, http.StatusInternalServerError, reqErr.StatusCode)
	})

	t.Run("Malformed response body", func(t *testing.T) {
		mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"not": "an array"`))
		}))
		defer mockServer.Close()

		client := NewBOCRatesClient(mockServer.URL, nil, nil)

		_, err := client.FetchLastRates(ctx)

		var fetchErr *entity.FetchError
		require.True(t, errors.As(err, &fetchErr))
	})

	t.Run("Connection failure", func(t *testing.T) {
		mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		mockServer.Close() // nothing is listening anymore

		client := NewBOCRatesClient(mockServer.URL, nil, nil)

		_, err := client.FetchLastRates(ctx)

		var fetchErr *entity.FetchError
		require.True(t, errors.As(err, &fetchErr))
	})

	t.Run("Cancelled context", func(t *testing.T) {
		mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[]`))
		}))
		defer mockServer.Close()

		client := NewBOCRatesClient(mockServer.URL, nil, nil)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := client.FetchLastRates(cancelled)

		var fetchErr *entity.FetchError
		require.True(t, errors.As(err, &fetchErr))
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("Empty array", func(t *testing.T) {
		mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`[]`))
		}))
		defer mockServer.Close()

		client := NewBOCRatesClient(mockServer.URL, nil, nil)

		records, err := client.FetchLastRates(ctx)

		assert.NoError(t, err)
		assert.Empty(t, records)
	})
}
