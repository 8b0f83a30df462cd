package greeting

// Data models the greeting payload. Field order is the wire order.
type Data struct {
	Message   string `json:"message" doc:"Configured greeting message" example:"Hello OpenShift"`
	Timestamp string `json:"timestamp" doc:"Instant the request was handled, UTC with millisecond precision" format:"date-time" example:"2024-01-01T00:00:00.000Z"`
}

// GetOutput is the response envelope for the greeting endpoint.
type GetOutput struct {
	Body Data
}
