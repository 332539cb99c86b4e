package models

// APIError is the wire shape of every error the API returns.
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// ErrorResponse wraps APIError in the response envelope.
type ErrorResponse struct {
	Error APIError `json:"error"`
}
