package routes

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/finsight-ai/finsight/internal/server/middleware"
	"github.com/finsight-ai/finsight/pkg/kg"
	"github.com/finsight-ai/finsight/pkg/logger"
)

// PostDocumentsHandler ingests documents into the knowledge graph. Builds are
// serialized; concurrent ingest requests queue on the build lock.
func PostDocumentsHandler(c echo.Context) error {
	type documentParams struct {
		ID     string `json:"id"`
		Ticker string `json:"ticker"`
		Text   string `json:"text"`
	}
	type postDocumentsParams struct {
		Documents []documentParams `json:"documents"`
	}
	type postDocumentsResponse struct {
		Message string         `json:"message,omitempty"`
		Stats   *kg.BuildStats `json:"stats,omitempty"`
	}

	params := new(postDocumentsParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, postDocumentsResponse{Message: "Invalid request body"})
	}
	if len(params.Documents) == 0 {
		return c.JSON(http.StatusBadRequest, postDocumentsResponse{Message: "documents is required"})
	}

	docs := make([]kg.Document, 0, len(params.Documents))
	for _, doc := range params.Documents {
		if strings.TrimSpace(doc.Text) == "" {
			return c.JSON(http.StatusBadRequest, postDocumentsResponse{Message: "document text is required"})
		}
		id := strings.TrimSpace(doc.ID)
		if id == "" {
			generated, err := gonanoid.New()
			if err != nil {
				return c.JSON(http.StatusInternalServerError, postDocumentsResponse{Message: "Internal server error"})
			}
			id = generated
		}
		docs = append(docs, kg.Document{
			ID:     id,
			Ticker: strings.ToUpper(strings.TrimSpace(doc.Ticker)),
			Text:   doc.Text,
		})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	app.BuildLock.Lock()
	defer app.BuildLock.Unlock()

	stats, err := app.Builder.Build(ctx, app.Graph, docs)
	if err != nil {
		logger.Error("Failed to build graph from documents", "err", err)
		return c.JSON(http.StatusInternalServerError, postDocumentsResponse{Message: "Failed to process documents"})
	}

	if app.GraphStore != nil {
		if err := app.GraphStore.SaveGraph(ctx, app.GraphID, app.Graph.Snapshot()); err != nil {
			logger.Error("Failed to persist graph snapshot", "err", err)
		}
	}

	return c.JSON(http.StatusOK, postDocumentsResponse{Stats: stats})
}
