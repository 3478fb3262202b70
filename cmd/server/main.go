package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog/log"

	"github.com/stbcloud/smarthome-auth/auth"
	"github.com/stbcloud/smarthome-auth/clients"
	"github.com/stbcloud/smarthome-auth/gate"
	"github.com/stbcloud/smarthome-auth/internal/config"
	"github.com/stbcloud/smarthome-auth/relay/mqttrelay"
	"github.com/stbcloud/smarthome-auth/resources"
	"github.com/stbcloud/smarthome-auth/server"
	"github.com/stbcloud/smarthome-auth/server/loginsession"
	"github.com/stbcloud/smarthome-auth/skill"
	"github.com/stbcloud/smarthome-auth/store/sqlitestore"
	"github.com/stbcloud/smarthome-auth/token"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	displayAppname(cfg.AppName)

	store, err := sqlitestore.New(cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}

	if cfg.Env == "DEV" {
		if err := seedDemoResources(store); err != nil {
			return fmt.Errorf("seeding resources: %w", err)
		}
	}

	publisher, err := mqttrelay.New(cfg.BrokerURL, cfg.RelayClientID)
	if err != nil {
		return fmt.Errorf("connecting to device relay: %w", err)
	}
	defer publisher.Close()

	tokenManager := token.NewManager(store.Tokens(), cfg.TokenExpiry)

	authService, err := auth.NewAuthorizationService(auth.Repos{
		Clients:   store.Clients(),
		Resources: store.Resources(),
		Grants:    store.Grants(),
	}, tokenManager, auth.WithCodeLifetime(cfg.CodeExpiry))
	if err != nil {
		return err
	}

	registry, err := clients.NewRegistry(store.Clients(), cfg.DefaultRedirectURI, cfg.DefaultScope)
	if err != nil {
		return err
	}

	deviceGate, err := gate.New(tokenManager, store.Resources(), publisher)
	if err != nil {
		return err
	}

	dispatcher, err := skill.NewDispatcher(tokenManager, store.Resources(), deviceGate)
	if err != nil {
		return err
	}

	srv, err := server.New(cfg, authService, registry, deviceGate, dispatcher, loginsession.NewInMemoryRepo())
	if err != nil {
		return err
	}

	httpServer := &http.Server{Addr: cfg.Addr(), Handler: srv}
	go listenAndServe(httpServer)
	waitForStopSignal()
	return shutdown(httpServer)
}

func listenAndServe(httpServer *http.Server) {
	log.Info().Str("addr", httpServer.Addr).Msg("Server listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

// seedDemoResources provisions the demo account used during development.
func seedDemoResources(store *sqlitestore.Store) error {
	hash, err := resources.HashPassword("pw1")
	if err != nil {
		return err
	}
	return store.SeedResources([]resources.Resource{
		{
			Username:        "alice",
			PasswordHash:    hash,
			DeviceIDs:       []string{"1", "2"},
			DeviceAddresses: []string{"home/alice/stb1", "home/alice/stb2"},
		},
	})
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
