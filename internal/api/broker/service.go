package broker

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
	"github.com/skybi/session-broker/internal/api/broker/session"
	"github.com/skybi/session-broker/internal/api/broker/session/storage/inmem"
	"github.com/skybi/session-broker/internal/api/schema"
	"github.com/skybi/session-broker/internal/conference"
	"github.com/skybi/session-broker/internal/config"
	"github.com/skybi/session-broker/internal/storage"
	"github.com/skybi/session-broker/internal/task"
)

var shutdownTimeout = 5 * time.Second

// Service represents the broker API service
type Service struct {
	server *http.Server
	router http.Handler

	Config   *config.Config
	Storage  storage.Driver
	Platform conference.Platform

	registry       *conference.Registry
	sessionStorage session.Storage
	sessionCleanup *task.RepeatingTask
	loginThrottle  *loginThrottle

	writer *schema.Writer
}

// Initialize creates the session storage, the conference registry and the HTTP router
func (service *Service) Initialize() error {
	// Create the HTTP schema writer
	service.writer = &schema.Writer{
		InternalErrorHook: func(err error) {
			log.Error().Err(err).Msg("the broker API experienced an unexpected error")
		},
	}

	// Create the session storage and schedule the task that terminates expired sessions
	sessionStorage, err := inmem.New()
	if err != nil {
		return err
	}
	service.sessionStorage = sessionStorage
	if service.Config.SessionCleanupInterval > 0 {
		service.sessionCleanup = task.NewRepeating(func() {
			n, err := service.sessionStorage.TerminateExpired(context.Background())
			if err != nil {
				log.Error().Err(err).Msg("could not terminate expired sessions")
			} else if n > 0 {
				log.Debug().Int("amount", n).Msg("terminated expired sessions")
			}
		}, service.Config.SessionCleanupInterval)
		service.sessionCleanup.Start()
	}

	service.loginThrottle = newLoginThrottle(service.Config.LoginAttemptLimit, service.Config.LoginAttemptWindow)
	service.registry = conference.NewRegistry(service.Platform)

	// Create the HTTP router
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.RedirectSlashes)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: service.Config.APIAllowedOrigins,
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))
	router.NotFound(func(writer http.ResponseWriter, _ *http.Request) {
		service.writer.WriteErrors(writer, http.StatusNotFound, schema.ErrNotFound)
	})
	router.MethodNotAllowed(func(writer http.ResponseWriter, _ *http.Request) {
		service.writer.WriteErrors(writer, http.StatusMethodNotAllowed, schema.ErrMethodNotAllowed)
	})

	// Register the authentication endpoints
	router.Post("/api-login/login", service.EndpointLogin)
	router.Post("/api-login/logout", service.EndpointLogout)

	// Register the conference session endpoints
	router.Post("/api-sessions/get-token", withMiddlewares(service.EndpointGetToken, service.MiddlewareVerifySession))
	router.Post("/api-sessions/remove-user", withMiddlewares(service.EndpointRemoveUser, service.MiddlewareVerifySession))

	service.router = router
	return nil
}

// Startup initializes and starts up the broker API
func (service *Service) Startup() error {
	if err := service.Initialize(); err != nil {
		return err
	}

	server := &http.Server{
		Addr:              service.Config.APIListenAddress,
		Handler:           service.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	service.server = server
	return server.ListenAndServe()
}

// Shutdown gracefully shuts down the broker API
func (service *Service) Shutdown() {
	if service.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := service.server.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("could not gracefully shut down the broker API")
			service.server.Close()
		}
		service.server = nil
	}
	if service.sessionCleanup != nil {
		service.sessionCleanup.Stop(false)
		service.sessionCleanup = nil
	}
	if service.loginThrottle != nil {
		service.loginThrottle.stop()
	}
}

func withMiddlewares(end http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	final := end
	for i := len(middlewares); i > 0; i-- {
		final = middlewares[i-1](final)
	}
	return final
}
