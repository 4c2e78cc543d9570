// Command mealforge-devserver runs a local stand-in for the production
// recipe API, for development and end-to-end testing of the client.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/mealforge/mealforge-go/internal/devserver"
	"github.com/mealforge/mealforge-go/pkg/env"
	"github.com/mealforge/mealforge-go/pkg/log"
	"github.com/mealforge/mealforge-go/pkg/sig"
)

const shutdownTimeout = 5 * time.Second

func main() {
	addr := flag.String("addr", ":8590", "listen address")
	flag.Parse()

	logger := log.New(log.LevelInfo)
	ctx, cancel := sig.TermContext(context.Background())
	defer cancel()

	server := devserver.New(devserver.Config{
		JWTSecret: []byte(env.ParseStringDefault("MEALFORGE_DEV_JWT_SECRET", "mealforge-dev-secret")),
		TokenTTL:  env.ParseDurationDefault("MEALFORGE_DEV_TOKEN_TTL", 24*time.Hour),
	}, logger)

	httpServer := &http.Server{
		Addr:    *addr,
		Handler: server.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()
	logger.WithField("address", *addr).Info(ctx, "devserver started")

	select {
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error(ctx, "devserver shutdown failed")
		}
		logger.Info(ctx, "devserver stopped")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error(ctx, "devserver failed")
			os.Exit(1)
		}
	}
}
