package handlers

import (
	"net/http"

	"gemchat-backend/internal/models"
)

type ModelListHandler struct {
	resolver keyResolver
	gemini   generator
}

func NewModelListHandler(resolver keyResolver, gemini generator) *ModelListHandler {
	return &ModelListHandler{resolver: resolver, gemini: gemini}
}

// List returns the selectable model names. Without a key, or when the live
// listing fails, the static fallback set is returned so the sidebar always
// has options.
func (h *ModelListHandler) List(w http.ResponseWriter, r *http.Request) {
	apiKey, _ := h.resolver.ResolveKey("")

	names := h.gemini.ListModels(r.Context(), apiKey)
	writeJSON(w, http.StatusOK, models.ModelListResponse{Models: names})
}
