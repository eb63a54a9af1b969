// main wires high-level dependencies, exposes the HTTP router, and keeps
// the server lifecycle small. Business logic lives in internal packages.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"

	"landgate/internal/ledger"
	"landgate/internal/platform/config"
	"landgate/internal/platform/httpserver"
	"landgate/internal/platform/logger"
	platformmetrics "landgate/internal/platform/metrics"
	"landgate/internal/titles"
	"landgate/internal/titles/listener"
	titlesmetrics "landgate/internal/titles/metrics"
	httptransport "landgate/internal/transport/http"
)

func main() {
	log := logger.New()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Error("invalid configuration", "error", err.Error())
		os.Exit(1)
	}

	client := ledger.NewHTTPClient(cfg.Ledger)
	log.Info("ledger connection configured", "addr", cfg.Ledger.Addr(), "user", cfg.Ledger.Username)

	httpMetrics := platformmetrics.New()
	domainMetrics := titlesmetrics.New()

	svc := titles.NewService(client, log, domainMetrics)
	h := titles.NewHandler(svc, log, httpMetrics)
	router := httptransport.NewRouter(h)

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.ListenerEntity != "" {
		l := listener.New(client, ledger.EntityType(cfg.ListenerEntity), func(ctx context.Context, env ledger.Envelope) {
			log.Info("ledger record produced",
				"entity", string(env.Entity),
				"ref_index", env.RefIndex,
			)
		}, log)
		go func() {
			// The listener retries on its own; it only returns on shutdown.
			if err := l.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error("listener stopped", "error", err.Error())
			}
		}()
	}

	go func() {
		log.Info("starting landgate", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err.Error())
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err.Error())
		os.Exit(1)
	}
}
