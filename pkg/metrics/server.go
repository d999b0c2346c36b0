package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/index-builder/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/index-builder/pkg/logger"
)

// StartServer exposes the build's collectors on :port for the lifetime of
// one indexbuilder run. When checker is non-nil the same listener answers
// /healthz and /readyz for the build's Postgres and Redis dependencies. The
// returned func stops the listener; scrapes in flight are allowed to finish.
func StartServer(port int, checker *health.Checker) (shutdown func(context.Context) error) {
	log := logger.WithComponent("metrics")
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           NewMux(checker),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	go func() {
		log.Info("metrics server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server stopped", "addr", server.Addr, "error", err)
		}
	}()
	return server.Shutdown
}

// NewMux routes /metrics and, with a checker, the health probes. Other paths
// are not found so a misconfigured scraper fails loudly.
func NewMux(checker *health.Checker) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", Handler())
	if checker != nil {
		mux.HandleFunc("GET /healthz", checker.LiveHandler())
		mux.HandleFunc("GET /readyz", checker.ReadyHandler())
	}
	return mux
}
