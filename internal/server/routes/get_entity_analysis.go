package routes

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/finsight-ai/finsight/internal/server/middleware"
)

// GetEntityAnalysisHandler reports the structural position of one entity.
// Unknown entities return a not-found analysis body, not an HTTP error: the
// caller asked a valid question with a negative answer.
func GetEntityAnalysisHandler(c echo.Context) error {
	type getEntityAnalysisResponse struct {
		Message string `json:"message"`
	}

	entityID := strings.TrimSpace(c.Param("id"))
	if entityID == "" {
		return c.JSON(http.StatusBadRequest, getEntityAnalysisResponse{Message: "entity id is required"})
	}

	app := c.(*middleware.AppContext).App
	analysis := app.Graph.Analyze(entityID)

	status := http.StatusOK
	if !analysis.Found {
		status = http.StatusNotFound
	}
	return c.JSON(status, analysis)
}
