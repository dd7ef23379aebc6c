package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"chatrelay-backend/internal/handlers"
	"chatrelay-backend/internal/middleware"
)

func New(
	chatHandler *handlers.ChatHandler,
	authHandler *handlers.AuthHandler,
	chatLimiter *middleware.RateLimiter,
	sessions *middleware.SessionAuth,
	requireSession bool,
	frontendURL string,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.CORS(frontendURL))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {

		// ──── Chat relay ────
		r.Group(func(r chi.Router) {
			if requireSession && sessions != nil {
				r.Use(sessions.Middleware)
			}
			r.Use(chatLimiter.Middleware)
			r.Post("/chat", chatHandler.Relay)
		})

		// ──── Auth Routes ────
		r.Route("/auth", func(r chi.Router) {
			r.Post("/google", authHandler.GoogleLogin)
			r.Get("/session", authHandler.Session)
			r.Post("/signout", authHandler.SignOut)
		})
	})

	return r
}
