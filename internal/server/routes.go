package server

import (
	"github.com/labstack/echo/v4"

	"github.com/finsight-ai/finsight/internal/server/routes"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api")

	// Knowledge graph routes
	apiRoutes.POST("/documents", routes.PostDocumentsHandler)
	apiRoutes.POST("/graph/query", routes.PostGraphQueryHandler)
	apiRoutes.GET("/graph/entities/:id/analysis", routes.GetEntityAnalysisHandler)

	// NL-to-SQL routes
	apiRoutes.POST("/sql/query", routes.PostSQLQueryHandler)
	apiRoutes.GET("/sql/schema", routes.GetSQLSchemaHandler)
	apiRoutes.GET("/sql/samples", routes.GetSQLSamplesHandler)
}
