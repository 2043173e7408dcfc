package api

import (
	"errors"
	"net/http"

	"github.com/skybi/session-broker/internal/api/broker"
	"github.com/skybi/session-broker/internal/api/monitoring"
	"github.com/skybi/session-broker/internal/conference"
	"github.com/skybi/session-broker/internal/config"
	"github.com/skybi/session-broker/internal/storage"
)

// Service represents the broker & monitoring API service
type Service struct {
	Config   *config.Config
	Storage  storage.Driver
	Platform conference.Platform

	broker     *broker.Service
	monitoring *monitoring.Service
}

// Startup starts up the broker & monitoring APIs
func (service *Service) Startup(errs chan<- error) {
	brokerService := &broker.Service{
		Config:   service.Config,
		Storage:  service.Storage,
		Platform: service.Platform,
	}
	service.broker = brokerService
	go func() {
		if err := brokerService.Startup(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	if !service.Config.IsMetricsEnabled() {
		return
	}
	monitoringService := &monitoring.Service{
		Config: service.Config,
	}
	service.monitoring = monitoringService
	go func() {
		if err := monitoringService.Startup(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()
}

// Shutdown shuts down the broker & monitoring APIs
func (service *Service) Shutdown() {
	if service.broker != nil {
		service.broker.Shutdown()
		service.broker = nil
	}
	if service.monitoring != nil {
		service.monitoring.Shutdown()
		service.monitoring = nil
	}
}
