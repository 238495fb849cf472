package routes

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/finsight-ai/finsight/internal/server/middleware"
)

// PostSQLQueryHandler runs the NL-to-SQL pipeline for one question. Pipeline
// failures are part of the envelope, not HTTP errors.
func PostSQLQueryHandler(c echo.Context) error {
	type postSQLQueryParams struct {
		Question string `json:"question"`
	}
	type postSQLQueryResponse struct {
		Message string `json:"message"`
	}

	params := new(postSQLQueryParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, postSQLQueryResponse{Message: "Invalid request body"})
	}
	if strings.TrimSpace(params.Question) == "" {
		return c.JSON(http.StatusBadRequest, postSQLQueryResponse{Message: "question is required"})
	}

	app := c.(*middleware.AppContext).App
	answer := app.SQL.Answer(c.Request().Context(), params.Question)
	return c.JSON(http.StatusOK, answer)
}
