package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"gemchat-backend/internal/models"
	"gemchat-backend/internal/session"
)

type ChatHandler struct {
	store    *session.Store
	resolver keyResolver
	gemini   generator
	hub      statusPublisher
}

func NewChatHandler(store *session.Store, resolver keyResolver, gemini generator, hub statusPublisher) *ChatHandler {
	return &ChatHandler{
		store:    store,
		resolver: resolver,
		gemini:   gemini,
		hub:      hub,
	}
}

// SendMessage appends the user's turn, runs one blocking model round trip
// and appends the assistant's turn. On any failure the user's turn stays
// recorded and no assistant turn is written.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Message is required", r))
		return
	}

	settings, err := h.store.Settings(sessionID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return
	}

	userTurn := models.ChatTurn{Role: models.RoleUser, Text: message}
	if err := h.store.Append(sessionID, userTurn); err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
		return
	}

	h.hub.Publish(r.Context(), sessionID, models.WSMessage{
		Type:    models.WSTurnStarted,
		Payload: models.TurnStatus{SessionID: sessionID.String()},
	})

	reply, err := h.generate(r, sessionID, settings)
	if err != nil {
		_, code := statusAndCode(err)
		h.hub.Publish(r.Context(), sessionID, models.WSMessage{
			Type:    models.WSTurnFailed,
			Payload: models.TurnStatus{SessionID: sessionID.String(), ErrorCode: code},
		})
		handleServiceError(w, r, err)
		return
	}

	assistantTurn := models.ChatTurn{Role: models.RoleAssistant, Text: reply}
	if err := h.store.Append(sessionID, assistantTurn); err != nil {
		handleServiceError(w, r, err)
		return
	}

	h.hub.Publish(r.Context(), sessionID, models.WSMessage{
		Type:    models.WSTurnCompleted,
		Payload: models.TurnStatus{SessionID: sessionID.String()},
	})

	writeJSON(w, http.StatusOK, models.SendMessageResponse{
		UserTurn:      userTurn,
		AssistantTurn: assistantTurn,
	})
}

func (h *ChatHandler) generate(r *http.Request, sessionID uuid.UUID, settings session.Settings) (string, error) {
	apiKey, err := h.resolver.ResolveKey(settings.APIKeyOverride)
	if err != nil {
		return "", err
	}

	turns, err := h.store.Turns(sessionID)
	if err != nil {
		return "", err
	}

	cfg := models.GenerationConfig{
		APIKey:          apiKey,
		ModelName:       settings.ModelName,
		Temperature:     settings.Temperature,
		MaxOutputTokens: settings.MaxOutputTokens,
	}

	return h.gemini.Generate(r.Context(), turns, cfg)
}
