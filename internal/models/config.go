package models

import "fmt"

// Defaults mirror the sidebar defaults of the original chat page.
const (
	DefaultModelName       = "gemini-1.5-flash-latest"
	DefaultTemperature     = 0.7
	DefaultMaxOutputTokens = 2048

	TemperatureMin     = 0.0
	TemperatureMax     = 2.0
	MaxOutputTokensCap = 8192
)

// GenerationConfig is assembled fresh for every model request from the
// session settings plus the resolved API key. It is never persisted.
type GenerationConfig struct {
	APIKey          string
	ModelName       string
	Temperature     float32
	MaxOutputTokens int32
}

// Validate returns per-field problems, empty when the config may be sent.
// A config that fails validation must never reach the vendor API.
func (c GenerationConfig) Validate() map[string]string {
	fields := make(map[string]string)
	if c.APIKey == "" {
		fields["api_key"] = "API key is required"
	}
	if c.ModelName == "" {
		fields["model_name"] = "Model name is required"
	}
	if c.Temperature < TemperatureMin || c.Temperature > TemperatureMax {
		fields["temperature"] = fmt.Sprintf("Temperature must be between %.1f and %.1f", TemperatureMin, TemperatureMax)
	}
	if c.MaxOutputTokens <= 0 || c.MaxOutputTokens > MaxOutputTokensCap {
		fields["max_output_tokens"] = fmt.Sprintf("Max output tokens must be between 1 and %d", MaxOutputTokensCap)
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// UpdateSettingsRequest carries partial settings changes from the UI sidebar.
// Nil fields are left untouched.
type UpdateSettingsRequest struct {
	ModelName       *string  `json:"model_name"`
	Temperature     *float32 `json:"temperature"`
	MaxOutputTokens *int32   `json:"max_output_tokens"`
	APIKey          *string  `json:"api_key"`
}

// SettingsResponse reports the active settings. The key itself is never
// echoed back, only whether one is available.
type SettingsResponse struct {
	ModelName       string  `json:"model_name"`
	Temperature     float32 `json:"temperature"`
	MaxOutputTokens int32   `json:"max_output_tokens"`
	HasAPIKey       bool    `json:"has_api_key"`
}
