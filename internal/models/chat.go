package models

// Turn roles. The vendor API calls the assistant role "model"; that mapping
// happens in the service layer, everything else speaks these two.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatTurn is a single message in a conversation. Immutable once appended.
type ChatTurn struct {
	Role string `json:"role"` // "user" or "assistant"
	Text string `json:"text"`
}

// SendMessageRequest is the payload for submitting a user message.
type SendMessageRequest struct {
	Message string `json:"message"`
}

// SendMessageResponse carries both turns recorded by a successful submission.
type SendMessageResponse struct {
	UserTurn      ChatTurn `json:"user_turn"`
	AssistantTurn ChatTurn `json:"assistant_turn"`
}

// SessionResponse is returned on session create and fetch.
type SessionResponse struct {
	ID       string           `json:"id"`
	Turns    []ChatTurn       `json:"turns"`
	Settings SettingsResponse `json:"settings"`
	WSToken  string           `json:"ws_token,omitempty"`
}

// ModelListResponse lists the model names available for selection.
type ModelListResponse struct {
	Models []string `json:"models"`
}
