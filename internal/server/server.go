package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomid "github.com/labstack/echo/v4/middleware"

	mid "github.com/finsight-ai/finsight/internal/server/middleware"
	"github.com/finsight-ai/finsight/pkg/logger"
)

// Run starts the HTTP server over the composed App and blocks until SIGINT
// or SIGTERM, then shuts down gracefully.
func Run(app *mid.App, listenAddr string) {
	e := echo.New()
	e.HideBanner = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e.Use(mid.AppContextMiddleware(app))
	e.Use(echomid.CORS())
	e.Use(echomid.Logger())
	e.Use(echomid.Recover())
	e.Use(echomid.BodyLimit("64M"))

	RegisterRoutes(e)

	go func() {
		logger.Info("Starting server", "addr", listenAddr)
		if err := e.Start(listenAddr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
