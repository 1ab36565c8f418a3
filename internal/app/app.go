// Package app assembles the agent: adapters, services, the reconciliation engine
// and the control API, in dependency order.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ridermi/rider-agent/config"
	"github.com/ridermi/rider-agent/internal/adapter/firebase"
	"github.com/ridermi/rider-agent/internal/adapter/graphql"
	"github.com/ridermi/rider-agent/internal/adapter/http/server"
	"github.com/ridermi/rider-agent/internal/adapter/mapbox"
	"github.com/ridermi/rider-agent/internal/service/chat"
	"github.com/ridermi/rider-agent/internal/service/earnings"
	"github.com/ridermi/rider-agent/internal/service/engine"
	"github.com/ridermi/rider-agent/internal/service/registration"
	"github.com/ridermi/rider-agent/internal/service/session"
	"github.com/ridermi/rider-agent/internal/storage/localstate"
	"github.com/ridermi/rider-agent/pkg/logger"
)

type App struct {
	api    *server.API
	engine *engine.Engine

	cfg config.Config
	log logger.Logger
}

func NewApplication(ctx context.Context, cfg config.Config, log logger.Logger) (*App, error) {
	store, err := localstate.New(cfg.State.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open local state store: %w", err)
	}

	// Session first: every remote adapter takes its tokens from it
	auth := firebase.NewAuth(cfg.Firebase.APIKey, cfg.Firebase.Timeout)
	sessions := session.NewManager(auth, log)

	gql := graphql.New(cfg.API.Endpoint, cfg.API.Timeout, sessions, log)
	firestore := firebase.NewStore(cfg.Firebase.ProjectID, cfg.Firebase.Timeout, sessions)
	maps := mapbox.New(cfg.Mapbox.Token, cfg.Mapbox.Timeout)

	eng := engine.New(gql, gql, store, firestore, engine.Options{
		AvailableInterval: cfg.Polling.AvailableInterval,
		LookupInterval:    cfg.Polling.LookupInterval,
		DetailInterval:    cfg.Polling.DetailInterval,
		DetailMaxFailures: cfg.Polling.DetailMaxFailures,
		TerminalGrace:     cfg.Polling.TerminalGrace,
		HandleStaleness:   cfg.Polling.HandleStaleness,
		BannerTTL:         cfg.Polling.BannerTTL,
	}, log)

	api, err := server.New(cfg, server.Services{
		Session:       sessions,
		Lifecycle:     eng,
		Engine:        eng,
		Presence:      eng,
		Earnings:      earnings.New(gql, log),
		Chat:          chat.New(firestore, eng, log),
		Registration:  registration.New(gql, store, log),
		Notifications: firestore,
		Geo:           maps,
		StateSource:   eng,
		Sessions:      sessions,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to build control API: %w", err)
	}

	return &App{
		api:    api,
		engine: eng,
		cfg:    cfg,
		log:    log,
	}, nil
}

// Run starts the pollers and the control API and blocks until a shutdown signal
// or a fatal server error.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.engine.Start(ctx)

	errCh := make(chan error, 1)
	a.api.Run(ctx, errCh)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case s := <-sig:
		a.log.Info(ctx, "shutdown signal received", "signal", s.String())
	}

	return a.api.Stop(ctx)
}
