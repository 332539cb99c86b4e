package models

// Websocket event types pushed while a submission is in flight.
const (
	WSTurnStarted   = "turn_started"
	WSTurnCompleted = "turn_completed"
	WSTurnFailed    = "turn_failed"
)

// WSMessage is the envelope for websocket status events.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// TurnStatus is the payload of turn lifecycle events.
type TurnStatus struct {
	SessionID string `json:"session_id"`
	ErrorCode string `json:"error_code,omitempty"`
}
