package routes

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/finsight-ai/finsight/internal/server/middleware"
	"github.com/finsight-ai/finsight/pkg/kg"
	"github.com/finsight-ai/finsight/pkg/logger"
)

// PostGraphQueryHandler answers a natural language question from the
// knowledge graph.
func PostGraphQueryHandler(c echo.Context) error {
	type postGraphQueryParams struct {
		Question string `json:"question"`
		TopK     int    `json:"top_k"`
		// Pointer so an explicit 0 (seeds only) is distinct from an omitted
		// field, which gets the engine default.
		MaxDepth *int `json:"max_depth"`
	}
	type postGraphQueryResponse struct {
		Message string `json:"message"`
	}

	params := new(postGraphQueryParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, postGraphQueryResponse{Message: "Invalid request body"})
	}
	if strings.TrimSpace(params.Question) == "" {
		return c.JSON(http.StatusBadRequest, postGraphQueryResponse{Message: "question is required"})
	}

	app := c.(*middleware.AppContext).App

	var opts []kg.QueryOption
	if params.TopK > 0 {
		opts = append(opts, kg.WithTopK(params.TopK))
	}
	if params.MaxDepth != nil {
		opts = append(opts, kg.WithMaxDepth(*params.MaxDepth))
	}

	res, err := app.Query.Query(c.Request().Context(), params.Question, opts...)
	if err != nil {
		logger.Error("Failed to answer graph query", "err", err)
		return c.JSON(http.StatusInternalServerError, postGraphQueryResponse{Message: "Failed to answer query"})
	}

	return c.JSON(http.StatusOK, res)
}
