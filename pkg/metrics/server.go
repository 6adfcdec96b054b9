package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const readHeaderTimeout = 10 * time.Second

// Server exposes queue metrics over HTTP: the Prometheus scrape endpoint
// at /metrics and a liveness probe at /healthz.
type Server struct {
	srv *http.Server
}

// NewServer builds a metrics server for gatherer on addr (e.g. ":9090").
// Nothing listens until Start is called.
func NewServer(addr string, gatherer prometheus.Gatherer) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", healthz)

	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}
}

// healthz reports liveness only. The queue has no external dependencies to
// probe, so serving the endpoint at all means the process is up.
func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok") //nolint:errcheck // best-effort liveness response
}

// Start begins listening in a background goroutine and returns a channel
// that receives the listen error, if any, and is then closed. A clean
// shutdown closes the channel without sending.
func (s *Server) Start() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		err := s.srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server on %s: %w", s.srv.Addr, err)
		}
	}()
	return errCh
}

// Shutdown stops accepting connections and waits for in-flight scrapes to
// finish, or until ctx is canceled.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
