package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"gemchat-backend/internal/handlers"
	"gemchat-backend/internal/middleware"
	"gemchat-backend/internal/websocket"
	"gemchat-backend/web"
)

func New(
	sessionHandler *handlers.SessionHandler,
	chatHandler *handlers.ChatHandler,
	modelHandler *handlers.ModelListHandler,
	wsHub *websocket.Hub,
	frontendURL string,
	chatRequestsPerMin int,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Chat rate limiter (per IP)
	chatLimiter := middleware.NewRateLimiter(chatRequestsPerMin, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Session Routes ────
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.Create)
			r.Get("/{id}", sessionHandler.Get)
			r.Delete("/{id}/messages", sessionHandler.ClearMessages)
			r.Get("/{id}/settings", sessionHandler.GetSettings)
			r.Put("/{id}/settings", sessionHandler.UpdateSettings)

			// Message submission is the only route that hits the vendor API
			r.Group(func(r chi.Router) {
				r.Use(chatLimiter.Middleware)
				r.Post("/{id}/messages", chatHandler.SendMessage)
			})
		})

		// ──── Model Routes ────
		r.Get("/models", modelHandler.List)

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	// ──── Chat page ────
	r.Handle("/*", web.Static())

	return r
}
