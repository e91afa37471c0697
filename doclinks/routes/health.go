package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"doclinks/doclinks/config"
	"doclinks/doclinks/controllers"
	"doclinks/doclinks/middlewares"
)

func HealthRoutes(ctrl *controllers.HealthController) chi.Router {
	r := chi.NewRouter()
	r.Get("/", ctrl.HealthCheck)
	return r
}

// NewRouter mounts every route group. No request timeout is set: agent
// searches run for minutes and end on their own step budget.
func NewRouter(cfg config.Config, docs *controllers.DocumentsController) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares.RequestLogger)
	r.Use(middleware.Recoverer)

	r.Mount("/health", HealthRoutes(controllers.NewHealthController(docs)))
	r.Mount("/documents", DocumentRoutes(docs, cfg))
	r.Mount("/browser", BrowserRoutes(docs, cfg))
	r.Mount("/agents", AgentRoutes(controllers.NewAgentsController(docs), cfg))
	return r
}
