package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"pagelens/internal/auth"
	"pagelens/internal/handlers"
	"pagelens/internal/history"
	"pagelens/internal/rag"
	"pagelens/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Engine        rag.Engine
	Ingestor      handlers.Ingestor
	HistoryStore  history.Store
	VectorStore   vectorstore.VectorStore
	Authenticator auth.Authenticator
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	askHandler := handlers.NewAskHandler(deps.Engine, deps.HistoryStore)
	contentHandler := handlers.NewContentHandler(deps.Ingestor)
	historyHandler := handlers.NewHistoryHandler(deps.HistoryStore)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore)

	r.Method(http.MethodGet, "/health", healthHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(AuthMiddleware(deps.Authenticator))

		r.Method(http.MethodPost, "/content/process", contentHandler)
		r.Method(http.MethodPost, "/query/ask", askHandler)

		r.Route("/history", func(r chi.Router) {
			r.Post("/record", historyHandler.Record)
			r.Get("/", historyHandler.Get)
			r.Delete("/", historyHandler.Delete)
			r.Get("/queries", historyHandler.GetQueries)
			r.Delete("/queries/{id}", historyHandler.DeleteQuery)
		})
	})

	return r
}
