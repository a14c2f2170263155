package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/mutker/hostctl/internal/api"
	"codeberg.org/mutker/hostctl/internal/auth"
	"codeberg.org/mutker/hostctl/internal/config"
	"codeberg.org/mutker/hostctl/internal/errors"
	"codeberg.org/mutker/hostctl/internal/logger"
	"codeberg.org/mutker/hostctl/internal/pid"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

func serve(cfg *config.Config) error {
	errFactory := errors.New()

	if err := cfg.RequireToken(); err != nil {
		return err
	}

	pidPath := pid.DefaultPath()
	if err := pid.Write(pidPath); err != nil {
		return err
	}
	defer func() {
		if err := pid.Remove(pidPath); err != nil {
			logger.Warn().Err(err).Msg("Failed to remove PID file")
		}
	}()

	a, err := build(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	gin.SetMode(gin.ReleaseMode)
	srv := api.New(a.dispatcher, a.aggregator, a.launcher, auth.StaticToken{Token: cfg.Auth.Token}, api.Options{
		StaticDir:      cfg.Server.StaticDir,
		CORSOrigins:    cfg.Server.CORSOrigins,
		ProtectControl: cfg.Auth.ProtectControl,
	})
	httpServer := srv.NewHTTPServer(cfg.Server.Listen)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("listen", cfg.Server.Listen).
			Str("platform", cfg.Platform).
			Bool("protect_control", cfg.Auth.ProtectControl).
			Msg("hostctl listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return errFactory.Wrap(errors.ErrServe, err)
		}
		return nil
	case <-ctx.Done():
		logger.Info().Msg("Received termination signal.")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return errFactory.Wrap(errors.ErrShutdownFailed, err)
	}
	logger.Info().Msg("Exiting...")

	return nil
}
