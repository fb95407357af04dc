// Package widget holds the presenter state machine for the rate chart.
package widget

import (
	"context"
	"errors"
	"sync"

	"github.com/bocwatch/aud-cny-rate-widget/internal/application/service"
	"github.com/bocwatch/aud-cny-rate-widget/internal/domain/entity"
	"github.com/bocwatch/aud-cny-rate-widget/internal/infrastructure/logger"
)

// Phase identifies the presenter state. Loading is the initial phase; Ready
// and Error are terminal for the component's lifetime. There is no refresh
// operation and no transition back to Loading.
type Phase int

const (
	// PhaseLoading means the fetch is still in flight.
	PhaseLoading Phase = iota
	// PhaseReady means the chart model is available.
	PhaseReady
	// PhaseError means the fetch failed.
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseReady:
		return "ready"
	case PhaseError:
		return "error"
	default:
		return "loading"
	}
}

// ErrorMessage is the single user-facing failure message. HTTP failures and
// network or decode failures surface the same text; the cause is only logged.
const ErrorMessage = "Unable to load BOC CNY/AUD rates. Please try again later."

// Snapshot is the presenter state at one point in time. Chart is set only in
// PhaseReady, Message only in PhaseError.
type Snapshot struct {
	Phase   Phase
	Chart   *service.RateChart
	Message string
}

// Component owns one fetch-and-render lifecycle: mount, a single fetch, a
// terminal snapshot. A result that arrives after the mount scope has ended is
// discarded rather than installed.
type Component struct {
	charts *service.ChartService
	logger logger.Logger

	mu       sync.Mutex
	snapshot Snapshot
	mounted  bool
	cancel   context.CancelFunc

	done chan struct{}
}

// NewComponent creates an unmounted component in the Loading phase.
func NewComponent(charts *service.ChartService, log logger.Logger) *Component {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &Component{
		charts:   charts,
		logger:   log,
		snapshot: Snapshot{Phase: PhaseLoading},
		done:     make(chan struct{}),
	}
}

// Mount starts the single fetch. The fetch lifetime is scoped to ctx;
// cancelling ctx or calling Unmount before the response arrives discards the
// update. Mounting twice is a no-op.
func (c *Component) Mount(ctx context.Context) {
	c.mu.Lock()
	if c.mounted {
		c.mu.Unlock()
		return
	}
	c.mounted = true
	ctx, c.cancel = context.WithCancel(ctx)
	c.mu.Unlock()

	go c.load(ctx)
}

// Unmount ends the mount scope. Safe to call more than once, and before the
// fetch has settled.
func (c *Component) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
}

// CurrentSnapshot returns a copy of the presenter state.
func (c *Component) CurrentSnapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.snapshot
}

// Done is closed once the fetch has settled, whether its result was installed
// or discarded. It never closes if Mount was not called.
func (c *Component) Done() <-chan struct{} {
	return c.done
}

func (c *Component) load(ctx context.Context) {
	chart, err := c.charts.BuildChart(ctx)

	c.mu.Lock()
	defer close(c.done)
	defer c.mu.Unlock()

	if ctx.Err() != nil {
		// The mount scope ended while the request was in flight; the
		// component no longer owns its view state.
		c.logger.Debug("Discarding fetch result after unmount", nil)
		return
	}

	if err != nil {
		fields := map[string]interface{}{
			"error": err.Error(),
		}
		var reqErr *entity.RequestFailedError
		if errors.As(err, &reqErr) {
			fields["status"] = reqErr.StatusCode
		}
		c.logger.Error("Rate fetch failed", fields)

		c.snapshot = Snapshot{Phase: PhaseError, Message: ErrorMessage}
		return
	}

	c.logger.Info("Rate chart ready", map[string]interface{}{
		"observations": len(chart.Observations),
	})
	c.snapshot = Snapshot{Phase: PhaseReady, Chart: chart}
}
