package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mvcm/internal/observability"
)

// ShutdownTimeout bounds graceful shutdown of the listeners.
const ShutdownTimeout = 10 * time.Second

// ListenAndServe serves h on addr until ctx ends. A separate metrics
// listener runs on metricsAddr unless it is empty or equal to addr.
func ListenAndServe(ctx context.Context, addr, metricsAddr string, h http.Handler, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	servers := []*http.Server{{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}}
	if metricsAddr != "" && metricsAddr != addr {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.Handler())
		servers = append(servers, &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			logger.Info("http listener started", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("listen %s: %w", srv.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("shutdown %s: %w", srv.Addr, err))
			}
		}
		logger.Info("http listeners stopped")
		return errors.Join(errs...)
	})
	return g.Wait()
}
