package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/skybi/session-broker/internal/api"
	"github.com/skybi/session-broker/internal/config"
	"github.com/skybi/session-broker/internal/livekit"
	"github.com/skybi/session-broker/internal/storage/static"
	"github.com/skybi/session-broker/internal/user"
)

func main() {
	// Set up zerolog to use pretty printing
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out: os.Stderr,
	})
	log.Info().Msg("starting up...")

	// Load the application configuration
	log.Info().Msg("loading configuration...")
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("could not load the configuration")
	}
	if cfg.IsEnvProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Debug().Str("config", cfg.String()).Msg("")

	// Initialize the credential store
	log.Info().Msg("initializing credential store...")
	var driver *static.Driver
	hashCost := static.WithHashCost(cfg.CredentialsHashCost)
	if cfg.CredentialsFile != "" {
		driver, err = static.NewFromFile(cfg.CredentialsFile, hashCost)
		if err != nil {
			log.Fatal().Err(err).Msg("could not load the credential file")
		}
	} else {
		log.Warn().Msg("no credential file configured; using the built-in demo users")
		driver = static.New(user.DefaultCredentials(), hashCost)
	}
	if err := driver.Initialize(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("could not initialize the credential store")
	}
	defer driver.Close()

	// Start up the broker & monitoring APIs
	log.Info().Str("broker_api", cfg.APIListenAddress).Str("metrics_api", cfg.MetricsListenAddress).Str("livekit", cfg.LiveKitURL).Msg("starting up broker & monitoring APIs...")
	apis := &api.Service{
		Config:   cfg,
		Storage:  driver,
		Platform: livekit.New(cfg),
	}
	apiErrs := make(chan error, 1)
	apis.Startup(apiErrs)
	go func() {
		err := <-apiErrs
		log.Fatal().Err(err).Msg("the API service raised an unexpected error")
	}()
	defer func() {
		log.Info().Msg("shutting down the broker & monitoring APIs...")
		apis.Shutdown()
	}()

	log.Info().Msg("done!")
	defer log.Info().Msg("shutting down...")

	// Wait for the application to be terminated
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	<-shutdown
}
