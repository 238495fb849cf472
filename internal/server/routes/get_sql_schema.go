package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/finsight-ai/finsight/internal/server/middleware"
)

// GetSQLSchemaHandler returns the schema description used for SQL generation.
func GetSQLSchemaHandler(c echo.Context) error {
	type getSQLSchemaResponse struct {
		Schema string `json:"schema"`
	}

	app := c.(*middleware.AppContext).App
	return c.JSON(http.StatusOK, getSQLSchemaResponse{
		Schema: app.SQL.Schema().Describe(c.Request().Context()),
	})
}
