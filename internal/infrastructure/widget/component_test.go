package widget

import (
	"context"
	"testing"
	"time"

	"github.com/bocwatch/aud-cny-rate-widget/internal/application/service"
	"github.com/bocwatch/aud-cny-rate-widget/internal/domain/entity"
	"github.com/bocwatch/aud-cny-rate-widget/internal/infrastructure/logger"
	"github.com/bocwatch/aud-cny-rate-widget/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testLogger = logger.NewJSONLogger(nil, logger.ErrorLevel)

func rateValue(f float64) *entity.RateValue {
	v := entity.RateValue(f)
	return &v
}

// blockingSource holds the fetch open until released, so tests can observe
// the Loading phase and unmount mid-flight.
type blockingSource struct {
	release chan struct{}
	records []entity.RateRecord
}

func (s *blockingSource) FetchLastRates(ctx context.Context) ([]entity.RateRecord, error) {
	select {
	case <-s.release:
		return s.records, nil
	case <-ctx.Done():
		return nil, &entity.FetchError{Cause: ctx.Err()}
	}
}

func waitDone(t *testing.T, c *Component) {
	t.Helper()
	select {
	case <-c.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("component fetch did not settle")
	}
}

func TestComponentLifecycle(t *testing.T) {
	t.Run("Initial phase is loading", func(t *testing.T) {
		source := new(mocks.MockRateSource)
		component := NewComponent(service.NewChartService(source, testLogger), testLogger)

		snap := component.CurrentSnapshot()
		assert.Equal(t, PhaseLoading, snap.Phase)
		assert.Nil(t, snap.Chart)
	})

	t.Run("Loading until the fetch settles", func(t *testing.T) {
		source := &blockingSource{release: make(chan struct{}), records: []entity.RateRecord{
			{Timestamp: "2024-03-08T10:30:00Z", BuyingRate: rateValue(469.88), SellingRate: rateValue(473.10)},
		}}
		component := NewComponent(service.NewChartService(source, testLogger), testLogger)

		component.Mount(context.Background())
		assert.Equal(t, PhaseLoading, component.CurrentSnapshot().Phase)

		close(source.release)
		waitDone(t, component)

		snap := component.CurrentSnapshot()
		require.Equal(t, PhaseReady, snap.Phase)
		require.NotNil(t, snap.Chart)
		assert.Len(t, snap.Chart.Observations, 1)
		assert.Empty(t, snap.Message)
	})

	t.Run("Ready with empty series", func(t *testing.T) {
		source := new(mocks.MockRateSource)
		source.On("FetchLastRates", mock.Anything).Return([]entity.RateRecord{}, nil).Once()
		component := NewComponent(service.NewChartService(source, testLogger), testLogger)

		component.Mount(context.Background())
		waitDone(t, component)

		snap := component.CurrentSnapshot()
		require.Equal(t, PhaseReady, snap.Phase)
		assert.Empty(t, snap.Chart.Observations)
		assert.False(t, snap.Chart.HasBounds)
	})

	t.Run("HTTP failure never reaches ready", func(t *testing.T) {
		source := new(mocks.MockRateSource)
		source.On("FetchLastRates", mock.Anything).Return(nil, &entity.RequestFailedError{StatusCode: 503}).Once()
		component := NewComponent(service.NewChartService(source, testLogger), testLogger)

		component.Mount(context.Background())
		waitDone(t, component)

		snap := component.CurrentSnapshot()
		assert.Equal(t, PhaseError, snap.Phase)
		assert.Nil(t, snap.Chart)
		assert.Equal(t, ErrorMessage, snap.Message)
	})

	t.Run("Network failure shows the same message as an HTTP failure", func(t *testing.T) {
		httpSource := new(mocks.MockRateSource)
		httpSource.On("FetchLastRates", mock.Anything).Return(nil, &entity.RequestFailedError{StatusCode: 500}).Once()
		httpComponent := NewComponent(service.NewChartService(httpSource, testLogger), testLogger)

		netSource := new(mocks.MockRateSource)
		netSource.On("FetchLastRates", mock.Anything).Return(nil, &entity.FetchError{Cause: context.DeadlineExceeded}).Once()
		netComponent := NewComponent(service.NewChartService(netSource, testLogger), testLogger)

		httpComponent.Mount(context.Background())
		netComponent.Mount(context.Background())
		waitDone(t, httpComponent)
		waitDone(t, netComponent)

		httpSnap := httpComponent.CurrentSnapshot()
		netSnap := netComponent.CurrentSnapshot()

		assert.Equal(t, PhaseError, httpSnap.Phase)
		assert.Equal(t, PhaseError, netSnap.Phase)
		assert.Equal(t, httpSnap.Message, netSnap.Message)
	})

	t.Run("Unmount mid-flight discards the result", func(t *testing.T) {
		source := &blockingSource{release: make(chan struct{})}
		component := NewComponent(service.NewChartService(source, testLogger), testLogger)

		component.Mount(context.Background())
		component.Unmount()
		waitDone(t, component)

		// The late result was dropped, not installed as an error state.
		assert.Equal(t, PhaseLoading, component.CurrentSnapshot().Phase)
	})

	t.Run("Cancelled mount scope discards the result", func(t *testing.T) {
		source := &blockingSource{release: make(chan struct{})}
		component := NewComponent(service.NewChartService(source, testLogger), testLogger)

		ctx, cancel := context.WithCancel(context.Background())
		component.Mount(ctx)
		cancel()
		waitDone(t, component)

		assert.Equal(t, PhaseLoading, component.CurrentSnapshot().Phase)
	})

	t.Run("Unmount is idempotent", func(t *testing.T) {
		source := &blockingSource{release: make(chan struct{})}
		component := NewComponent(service.NewChartService(source, testLogger), testLogger)

		component.Mount(context.Background())
		component.Unmount()
		component.Unmount()
		waitDone(t, component)
	})

	t.Run("Second mount is a no-op", func(t *testing.T) {
		source := new(mocks.MockRateSource)
		source.On("FetchLastRates", mock.Anything).Return([]entity.RateRecord{}, nil).Once()
		component := NewComponent(service.NewChartService(source, testLogger), testLogger)

		component.Mount(context.Background())
		component.Mount(context.Background())
		waitDone(t, component)

		// Exactly one fetch happened
		source.AssertExpectations(t)
	})
}
