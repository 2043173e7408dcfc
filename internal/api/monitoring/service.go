package monitoring

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/skybi/session-broker/internal/config"
)

// Service represents the monitoring API exposing the Prometheus metrics
type Service struct {
	server *http.Server

	Config *config.Config
}

// Handler builds the HTTP handler of the monitoring API
func (service *Service) Handler() http.Handler {
	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})
	return router
}

// Startup starts up the monitoring API
func (service *Service) Startup() error {
	server := &http.Server{
		Addr:              service.Config.MetricsListenAddress,
		Handler:           service.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	service.server = server
	return server.ListenAndServe()
}

// Shutdown shuts down the monitoring API
func (service *Service) Shutdown() {
	if service.server != nil {
		service.server.Close()
		service.server = nil
	}
}
