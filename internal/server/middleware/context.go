package middleware

import (
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/finsight-ai/finsight/pkg/kg"
	"github.com/finsight-ai/finsight/pkg/store"
	"github.com/finsight-ai/finsight/pkg/textsql"
)

// App holds the composed engines shared by all request handlers.
type App struct {
	Graph   *kg.Graph
	Builder *kg.Builder
	Query   *kg.QueryEngine
	SQL     *textsql.Engine

	// GraphStore is optional; when set, builds persist the graph snapshot
	// under GraphID.
	GraphStore store.GraphStore
	GraphID    string

	// BuildLock serializes graph builds: one writer at a time, queries stay
	// concurrent.
	BuildLock sync.Mutex
}

// AppContext carries the App through echo handlers.
type AppContext struct {
	echo.Context
	App *App
}

// AppContextMiddleware wraps every request context with the shared App.
func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return next(&AppContext{c, app})
		}
	}
}
