package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"gemchat-backend/internal/config"
	"gemchat-backend/internal/models"
	"gemchat-backend/internal/services"
	"gemchat-backend/internal/session"
)

// generator is the model client surface the handlers depend on.
type generator interface {
	Generate(ctx context.Context, turns []models.ChatTurn, cfg models.GenerationConfig) (string, error)
	ListModels(ctx context.Context, apiKey string) []string
}

// keyResolver resolves the API key with the UI > secrets > env precedence.
type keyResolver interface {
	ResolveKey(override string) (string, error)
}

// statusPublisher pushes turn lifecycle events to the page.
type statusPublisher interface {
	Publish(ctx context.Context, sessionID uuid.UUID, msg models.WSMessage)
}

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			Fields:    fields,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusAndCode(err)

	var verr *services.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, status, errorRespWithFields(code, "Validation failed", verr.Fields, r))
		return
	}

	writeJSON(w, status, errorResp(code, errorMessage(err), r))
}

// statusAndCode maps the service error taxonomy onto HTTP status and the
// wire error code.
func statusAndCode(err error) (int, string) {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, "VALIDATION_ERROR"
	}

	var cfgErr *config.ConfigError
	if errors.As(err, &cfgErr) {
		return http.StatusBadRequest, "MISSING_API_KEY"
	}

	var merr *services.ModelError
	if errors.As(err, &merr) {
		switch merr.Kind {
		case services.ModelErrAuthFailure:
			return http.StatusUnauthorized, "AUTH_FAILURE"
		case services.ModelErrRateLimited:
			return http.StatusTooManyRequests, "RATE_LIMITED"
		case services.ModelErrInvalidModel:
			return http.StatusBadRequest, "INVALID_MODEL"
		case services.ModelErrNetworkFailure:
			return http.StatusBadGateway, "NETWORK_FAILURE"
		default:
			return http.StatusInternalServerError, "AI_ERROR"
		}
	}

	if errors.Is(err, session.ErrNotFound) {
		return http.StatusNotFound, "NOT_FOUND"
	}

	return http.StatusInternalServerError, "INTERNAL_ERROR"
}

func errorMessage(err error) string {
	var cfgErr *config.ConfigError
	if errors.As(err, &cfgErr) {
		return "No API key configured. Provide one in the settings, a secrets file, or the GEMINI_API_KEY environment variable."
	}

	var merr *services.ModelError
	if errors.As(err, &merr) {
		switch merr.Kind {
		case services.ModelErrAuthFailure:
			return "The API key was rejected by the model provider"
		case services.ModelErrRateLimited:
			return "The model provider is rate limiting requests. Try again later."
		case services.ModelErrInvalidModel:
			return "The selected model is not available"
		case services.ModelErrNetworkFailure:
			return "Could not reach the model provider"
		default:
			return "Failed to get AI response"
		}
	}

	if errors.Is(err, session.ErrNotFound) {
		return "Session not found"
	}

	return "Internal server error"
}
