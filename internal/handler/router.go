package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Anamitra-Sarkar/Langchain-Chatbot/internal/auth"
	chatHandler "github.com/Anamitra-Sarkar/Langchain-Chatbot/internal/handler/chat"
	conversationHandler "github.com/Anamitra-Sarkar/Langchain-Chatbot/internal/handler/conversation"
	toolsHandler "github.com/Anamitra-Sarkar/Langchain-Chatbot/internal/handler/tools"
	middlewarePkg "github.com/Anamitra-Sarkar/Langchain-Chatbot/internal/middleware"
	"github.com/Anamitra-Sarkar/Langchain-Chatbot/internal/provider"
	"github.com/Anamitra-Sarkar/Langchain-Chatbot/internal/store"
	"github.com/Anamitra-Sarkar/Langchain-Chatbot/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(st store.Store, registry *provider.Registry) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)
	r.Use(auth.Middleware)

	chat := chatHandler.New(st, registry)
	conversations := conversationHandler.New(st)
	tools := toolsHandler.New()

	r.Route("/api", func(api chi.Router) {
		chat.RegisterRoutes(api)
		conversations.RegisterRoutes(api)
		tools.RegisterRoutes(api)

		api.Get("/providers", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]any{
				"providers": registry.Names(),
				"default":   registry.DefaultName(),
			})
		})
	})

	return r
}
