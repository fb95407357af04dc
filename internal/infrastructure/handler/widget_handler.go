// Package handler exposes the widget over HTTP.
package handler

import (
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/bocwatch/aud-cny-rate-widget/internal/domain/entity"
	"github.com/bocwatch/aud-cny-rate-widget/internal/infrastructure/logger"
	"github.com/bocwatch/aud-cny-rate-widget/internal/infrastructure/middleware"
	"github.com/bocwatch/aud-cny-rate-widget/internal/infrastructure/render"
	"github.com/bocwatch/aud-cny-rate-widget/internal/infrastructure/widget"
	"github.com/gorilla/mux"
)

// WidgetHandler serves the widget page, the chart image, and the state API.
type WidgetHandler struct {
	component *widget.Component
	logger    logger.Logger
}

// NewWidgetHandler creates a new widget handler
func NewWidgetHandler(component *widget.Component, log logger.Logger) *WidgetHandler {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &WidgetHandler{
		component: component,
		logger:    log,
	}
}

// ServePage renders the widget page for the current presenter state: a
// spinner that refreshes itself while loading, a static error banner, or the
// chart with the observation table.
func (h *WidgetHandler) ServePage(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	snap := h.component.CurrentSnapshot()

	h.logger.Debug("Serving widget page", map[string]interface{}{
		"request_id": requestID,
		"phase":      snap.Phase.String(),
	})

	view := pageView{
		Phase:   snap.Phase.String(),
		Message: snap.Message,
	}
	if snap.Phase == widget.PhaseReady {
		view.Observations = snap.Chart.Observations
		view.BuySell = snap.Chart.Kind == entity.SeriesBuySell
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, view); err != nil {
		h.logger.Error("Failed to render widget page", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
	}
}

// ServeChartImage streams the rendered chart PNG once the widget is ready.
func (h *WidgetHandler) ServeChartImage(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	snap := h.component.CurrentSnapshot()

	if snap.Phase != widget.PhaseReady {
		h.logger.Warn("Chart image requested before ready", map[string]interface{}{
			"request_id": requestID,
			"phase":      snap.Phase.String(),
		})
		sendErrorResponse(w, h.logger, "Chart not available",
			"The rate chart has not loaded", http.StatusNotFound, requestID)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if err := render.WriteChartPNG(snap.Chart, w); err != nil {
		h.logger.Error("Failed to render chart image", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
	}
}

// ServeState returns the presenter state as JSON, used by the page to decide
// when to stop refreshing.
func (h *WidgetHandler) ServeState(w http.ResponseWriter, r *http.Request) {
	snap := h.component.CurrentSnapshot()

	resp := WidgetStateResponse{
		State:   snap.Phase.String(),
		Message: snap.Message,
	}
	if snap.Phase == widget.PhaseReady {
		resp.Observations = snap.Chart.Observations
		if snap.Chart.HasBounds {
			bounds := snap.Chart.Bounds
			resp.Bounds = &bounds
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// RegisterRoutes registers the widget handler routes
func (h *WidgetHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/", h.ServePage).Methods("GET")
	router.HandleFunc("/widget/chart.png", h.ServeChartImage).Methods("GET")
	router.HandleFunc("/api/v1/widget/state", h.ServeState).Methods("GET")

	h.logger.Info("Widget routes registered", map[string]interface{}{
		"routes": []string{
			"GET /",
			"GET /widget/chart.png",
			"GET /api/v1/widget/state",
		},
	})
}

// sendErrorResponse sends a standardized error response
func sendErrorResponse(w http.ResponseWriter, log logger.Logger, message, description string, statusCode int, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := ErrorResponse{
		Error:       message,
		Status:      statusCode,
		Description: description,
		RequestID:   requestID,
	}

	log.Debug("Sending error response", map[string]interface{}{
		"request_id":  requestID,
		"status_code": statusCode,
		"message":     message,
	})

	json.NewEncoder(w).Encode(resp)
}

type pageView struct {
	Phase        string
	Message      string
	BuySell      bool
	Observations []entity.Observation
}

var pageTemplate = template.Must(template.New("widget").Parse(widgetPageHTML))

const widgetPageHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  {{if eq .Phase "loading"}}<meta http-equiv="refresh" content="1" />{{end}}
  <title>BOC CNY/AUD Rates</title>
  <style>
    body { margin: 0; font-family: "Segoe UI", "Helvetica Neue", Arial, sans-serif; color: #1b1b1b; background: #f7f4ef; }
    .card { max-width: 820px; margin: 32px auto; background: #fff; border: 1px solid #e1d9ce; border-radius: 8px; padding: 24px; }
    h1 { margin: 0 0 16px; font-size: 20px; }
    .spinner { width: 36px; height: 36px; margin: 40px auto; border: 4px solid #e1d9ce; border-top-color: #0c3b2e; border-radius: 50%; animation: spin 0.8s linear infinite; }
    @keyframes spin { to { transform: rotate(360deg); } }
    .banner { padding: 14px 16px; border: 1px solid #d9a0a0; border-radius: 6px; background: #fbeaea; color: #7a1f1f; }
    table { width: 100%; border-collapse: collapse; margin-top: 16px; font-size: 13px; }
    th, td { padding: 6px 8px; border-bottom: 1px solid #e1d9ce; text-align: right; }
    th:first-child, td:first-child { text-align: left; }
    img { max-width: 100%; }
  </style>
</head>
<body>
  <div class="card">
    <h1>BOC CNY/AUD exchange rates &mdash; last 10 observations</h1>
{{if eq .Phase "loading"}}
    <div class="spinner"></div>
{{else if eq .Phase "error"}}
    <div class="banner">{{.Message}}</div>
{{else}}
    <img src="/widget/chart.png" alt="CNY/AUD rate chart" width="760" height="320" />
    <table>
      <tr><th>Time</th>{{if .BuySell}}<th>Buying</th><th>Selling</th>{{else}}<th>Rate</th>{{end}}</tr>
{{range .Observations}}      <tr><td>{{.Label}}</td>{{if $.BuySell}}<td>{{printf "%.2f" .BuyingRate}}</td><td>{{printf "%.2f" .SellingRate}}</td>{{else}}<td>{{printf "%.2f" .Rate}}</td>{{end}}</tr>
{{end}}    </table>
{{end}}
  </div>
</body>
</html>
`
