package main

import (
	"github.com/consensuslabs/extformatter/internal/formatter"
	"github.com/consensuslabs/extformatter/internal/health"
	httpapi "github.com/consensuslabs/extformatter/internal/http"
	"github.com/consensuslabs/extformatter/internal/http/middleware"
)

// setupRoutes configures all the routes for our application
func (a *App) setupRoutes() {
	responseHandler := httpapi.NewResponseHandler(a.logger)
	healthHandler := health.NewHandler(responseHandler, a.Config.Formatter.Executable)
	formatterHandler := formatter.NewHandler(a.formatter, responseHandler, a.logger)

	a.router.Use(middleware.RequestLoggerMiddleware(a.logger))

	a.router.GET("/health", healthHandler.HandleHealthCheck)

	v1 := a.router.Group("/api/v1")
	{
		v1.GET("/capabilities", formatterHandler.HandleCapabilities)
		v1.POST("/reformat", formatterHandler.HandleReformat)
	}
}
