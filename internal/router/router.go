package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/Kmcx/histolocal/internal/api/assistant"
	"github.com/Kmcx/histolocal/internal/api/auth"
	"github.com/Kmcx/histolocal/internal/api/dialogue"
)

// Config contains the handlers the router mounts. AssistantHandler and
// AuthHandler are optional: the service runs without a Gemini key or a
// database, it just doesn't mount those routes.
type Config struct {
	DialogueHandler        dialogue.Handler
	AssistantHandler       assistant.Handler
	AuthHandler            auth.Handler
	AuthenticateMiddleware func(http.Handler) http.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are expected to be
// applied before mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// The turn endpoint is public: the conversation context travels with
		// the request, so there is no per-user state to protect.
		r.Post("/itinerary/turn", cfg.DialogueHandler.GenerateTurn)
		// Route kept for clients of the previous API generation.
		r.Post("/generate-itinerary", cfg.DialogueHandler.GenerateTurn)

		if cfg.AssistantHandler != nil {
			r.Post("/ask-ai", cfg.AssistantHandler.AskAI)
		}

		if cfg.AuthHandler != nil {
			r.Group(func(r chi.Router) {
				r.Post("/auth/register", cfg.AuthHandler.Register)
				r.Post("/auth/login", cfg.AuthHandler.Login)
			})
			r.Group(func(r chi.Router) {
				r.Use(cfg.AuthenticateMiddleware)
				r.Get("/auth/me", cfg.AuthHandler.Me)
			})
		}
	})

	return r
}
