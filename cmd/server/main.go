// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"memo-gateway/internal/backend"
	memohandler "memo-gateway/internal/memo/handler"
	memometrics "memo-gateway/internal/memo/metrics"
	"memo-gateway/internal/memo/preview"
	"memo-gateway/internal/memo/session"
	"memo-gateway/internal/platform/audit"
	"memo-gateway/internal/platform/config"
	"memo-gateway/internal/platform/httpserver"
	"memo-gateway/internal/platform/logger"
	"memo-gateway/pkg/platform/httputil"
	"memo-gateway/pkg/platform/middleware/identity"
	"memo-gateway/pkg/platform/middleware/metadata"
)

func main() {
	log := logger.New()
	if err := run(log); err != nil {
		log.Error("memo-gateway exited", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.FromEnv()

	metrics := memometrics.New(prometheus.DefaultRegisterer)

	var auditPub audit.Publisher = audit.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		pub, err := audit.NewKafkaPublisher(ctx, cfg.KafkaBrokers, cfg.AuditTopic, log)
		if err != nil {
			return err
		}
		auditPub = pub
	}
	defer auditPub.Close()

	client, err := backend.New(cfg.BackendBaseURL, backend.WithLogger(log))
	if err != nil {
		return err
	}

	handler := memohandler.New(
		client,
		preview.New(log),
		session.New(log),
		metrics,
		auditPub,
		log,
		memohandler.WithPreviewTimeout(cfg.PreviewTimeout),
		memohandler.WithSessionTimeout(cfg.SessionTimeout),
	)

	router := chi.NewRouter()
	router.Use(metadata.Middleware)
	router.Use(identity.Middleware(cfg.JWTSigningKey, log))
	handler.Register(router)
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting memo-gateway",
			"addr", cfg.Addr,
			"backend", cfg.BackendBaseURL,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
