package api

// ErrorResponse is the stable failure body for every non-success status.
type ErrorResponse struct {
	Message string `json:"message"`
}

// MessageResponse is the success body for operations with no entity payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is the response for the health check endpoint.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}
