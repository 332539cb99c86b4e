package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"gemchat-backend/internal/models"
	"gemchat-backend/internal/session"
)

// tokenIssuer signs websocket tokens for new sessions.
type tokenIssuer interface {
	IssueToken(sessionID uuid.UUID, ttl time.Duration) (string, error)
}

type SessionHandler struct {
	store    *session.Store
	resolver keyResolver
	tokens   tokenIssuer
	tokenTTL time.Duration
}

func NewSessionHandler(store *session.Store, resolver keyResolver, tokens tokenIssuer, tokenTTL time.Duration) *SessionHandler {
	return &SessionHandler{
		store:    store,
		resolver: resolver,
		tokens:   tokens,
		tokenTTL: tokenTTL,
	}
}

// Create registers a fresh session. The page calls this on load, so a
// reload naturally starts with an empty history.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess := h.store.Create()

	wsToken, err := h.tokens.IssueToken(sess.ID, h.tokenTTL)
	if err != nil {
		log.Printf("Failed to issue ws token for session %s: %v", sess.ID, err)
	}

	writeJSON(w, http.StatusCreated, models.SessionResponse{
		ID:       sess.ID.String(),
		Turns:    []models.ChatTurn{},
		Settings: h.settingsResponse(sess.Settings),
		WSToken:  wsToken,
	})
}

// Get returns the session transcript and active settings.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	turns := sess.Turns
	if turns == nil {
		turns = []models.ChatTurn{}
	}

	writeJSON(w, http.StatusOK, models.SessionResponse{
		ID:       sess.ID.String(),
		Turns:    turns,
		Settings: h.settingsResponse(sess.Settings),
	})
}

// ClearMessages empties the chat history, keeping the session and settings.
func (h *SessionHandler) ClearMessages(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	if err := h.store.Clear(sessionID); err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Chat cleared"})
}

// GetSettings reports the active settings and whether a key is available.
func (h *SessionHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessionFromPath(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, h.settingsResponse(sess.Settings))
}

// UpdateSettings applies partial settings changes from the sidebar. Invalid
// values are rejected field by field; nothing is applied on failure.
func (h *SessionHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	var req models.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	settings, err := h.store.Settings(sessionID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return
	}

	fields := make(map[string]string)
	if req.ModelName != nil {
		if strings.TrimSpace(*req.ModelName) == "" {
			fields["model_name"] = "Model name must not be empty"
		} else {
			settings.ModelName = strings.TrimSpace(*req.ModelName)
		}
	}
	if req.Temperature != nil {
		if *req.Temperature < models.TemperatureMin || *req.Temperature > models.TemperatureMax {
			fields["temperature"] = fmt.Sprintf("Temperature must be between %.1f and %.1f", models.TemperatureMin, models.TemperatureMax)
		} else {
			settings.Temperature = *req.Temperature
		}
	}
	if req.MaxOutputTokens != nil {
		if *req.MaxOutputTokens <= 0 || *req.MaxOutputTokens > models.MaxOutputTokensCap {
			fields["max_output_tokens"] = fmt.Sprintf("Max output tokens must be between 1 and %d", models.MaxOutputTokensCap)
		} else {
			settings.MaxOutputTokens = *req.MaxOutputTokens
		}
	}
	if req.APIKey != nil {
		settings.APIKeyOverride = strings.TrimSpace(*req.APIKey)
	}

	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fields, r))
		return
	}

	if err := h.store.SetSettings(sessionID, settings); err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return
	}

	writeJSON(w, http.StatusOK, h.settingsResponse(settings))
}

func (h *SessionHandler) sessionFromPath(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return nil, false
	}

	sess, err := h.store.Get(sessionID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return nil, false
	}

	return sess, true
}

func (h *SessionHandler) settingsResponse(settings session.Settings) models.SettingsResponse {
	_, err := h.resolver.ResolveKey(settings.APIKeyOverride)
	return models.SettingsResponse{
		ModelName:       settings.ModelName,
		Temperature:     settings.Temperature,
		MaxOutputTokens: settings.MaxOutputTokens,
		HasAPIKey:       err == nil,
	}
}
