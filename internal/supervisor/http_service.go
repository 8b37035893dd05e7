// Cinemetrics - Movie ROI Analytics and Prediction
// Copyright 2026 M. Faucher (mfaucher)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mfaucher/cinemetrics

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mfaucher/cinemetrics/internal/config"
	"github.com/mfaucher/cinemetrics/internal/logging"
)

// HTTPService runs an http.Server under supervision. A listener error makes
// the service return, letting suture restart it; context cancellation
// triggers a graceful shutdown within the configured timeout.
type HTTPService struct {
	addr            string
	handler         http.Handler
	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration
}

// NewHTTPService creates a supervised HTTP server service.
func NewHTTPService(cfg *config.ServerConfig, handler http.Handler) *HTTPService {
	return &HTTPService{
		addr:            fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		handler:         handler,
		readTimeout:     cfg.ReadTimeout,
		writeTimeout:    cfg.WriteTimeout,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

// Serve implements suture.Service.
func (s *HTTPService) Serve(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.handler,
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", s.addr).Msg("http server listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logging.Warn().Err(err).Msg("http server shutdown incomplete, closing")
			_ = server.Close()
		}
		<-errCh
		logging.Info().Msg("http server stopped")
		return ctx.Err()
	}
}

// String names the service in supervisor logs.
func (s *HTTPService) String() string {
	return "http-server(" + s.addr + ")"
}
