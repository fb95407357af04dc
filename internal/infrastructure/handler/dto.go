package handler

import "github.com/bocwatch/aud-cny-rate-widget/internal/domain/entity"

// WidgetStateResponse represents the response for the widget state endpoint
type WidgetStateResponse struct {
	State        string               `json:"state"`
	Message      string               `json:"message,omitempty"`
	Observations []entity.Observation `json:"observations,omitempty"`
	Bounds       *entity.AxisBounds   `json:"bounds,omitempty"`
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error       string `json:"error"`
	Status      int    `json:"status"`
	Description string `json:"description,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}
