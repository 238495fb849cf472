package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/finsight-ai/finsight/pkg/textsql"
)

// GetSQLSamplesHandler returns sample questions for the financial tables.
func GetSQLSamplesHandler(c echo.Context) error {
	type getSQLSamplesResponse struct {
		Questions []string `json:"questions"`
	}

	return c.JSON(http.StatusOK, getSQLSamplesResponse{
		Questions: textsql.SampleQuestions(),
	})
}
