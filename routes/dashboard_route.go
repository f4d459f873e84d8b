package routes

import (
	"net/http"

	"hrpulse/handlers"
	"hrpulse/middlewares"

	"go.uber.org/zap"
)

func SetupRoutes(dashboardHandler *handlers.DashboardHandler, reportHandler *handlers.ReportHandler, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", dashboardHandler.Health)
	// Raw mock data sources
	mux.HandleFunc("GET /api/collections/{name}", dashboardHandler.GetCollection)
	// Views
	mux.HandleFunc("GET /api/pages", dashboardHandler.ListPages)
	mux.HandleFunc("POST /api/views", dashboardHandler.CreateView)
	mux.HandleFunc("GET /api/views", dashboardHandler.ListViews)
	mux.HandleFunc("GET /api/views/{id}", dashboardHandler.GetView)
	mux.HandleFunc("DELETE /api/views/{id}", dashboardHandler.CloseView)
	mux.HandleFunc("PUT /api/views/{id}/employee", dashboardHandler.SelectEmployee)
	mux.HandleFunc("GET /api/views/{id}/events", dashboardHandler.Events)
	// Sections
	mux.HandleFunc("GET /api/views/{id}/sections/{section}", dashboardHandler.GetSection)
	mux.HandleFunc("PUT /api/views/{id}/sections/{section}/filters", dashboardHandler.UpdateFilters)
	mux.HandleFunc("DELETE /api/views/{id}/sections/{section}/filters", dashboardHandler.ResetFilters)
	mux.HandleFunc("POST /api/views/{id}/sections/{section}/retry", dashboardHandler.RetrySection)
	// Reports
	mux.HandleFunc("GET /api/reports/{type}/download", reportHandler.Download)

	return middlewares.Chain(mux,
		middlewares.Recoverer(logger),
		middlewares.RequestLogger(logger),
		middlewares.CORS,
	)
}
