package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ridermi/rider-agent/config"
	"github.com/ridermi/rider-agent/internal/adapter/http/handler"
	"github.com/ridermi/rider-agent/internal/adapter/http/middleware"
	wshandler "github.com/ridermi/rider-agent/internal/adapter/http/ws"
	"github.com/ridermi/rider-agent/pkg/logger"
	wrap "github.com/ridermi/rider-agent/pkg/logger/wrapper"
)

const serviceName = "rider-agent"

type API struct {
	mux    *http.ServeMux
	server *http.Server
	routes *handlers
	m      *middleware.Middleware

	addr string
	cfg  config.Config
	log  logger.Logger
}

type handlers struct {
	health        *handler.Health
	session       *handler.Session
	ride          *handler.Ride
	presence      *handler.Presence
	earnings      *handler.Earnings
	chat          *handler.Chat
	registration  *handler.Registration
	notifications *handler.Notifications
	geo           *handler.Geo
	stateStream   *wshandler.StateStream
}

type Services struct {
	Session       handler.SessionService
	Lifecycle     handler.RiderLifecycle
	Engine        handler.RideEngine
	Presence      handler.PresenceEngine
	Earnings      handler.EarningsService
	Chat          handler.ChatService
	Registration  handler.RegistrationService
	Notifications handler.NotificationStore
	Geo           handler.GeoService
	StateSource   wshandler.StateSource
	Sessions      middleware.SessionChecker
}

func New(cfg config.Config, svc Services, log logger.Logger) (*API, error) {
	if svc.Session == nil || svc.Engine == nil {
		return nil, errors.New("session and engine services are required")
	}

	routes := &handlers{
		health:        handler.NewHealth(serviceName, log),
		session:       handler.NewSession(svc.Session, svc.Lifecycle, log),
		ride:          handler.NewRide(svc.Engine, log),
		presence:      handler.NewPresence(svc.Presence, log),
		earnings:      handler.NewEarnings(svc.Earnings, log),
		chat:          handler.NewChat(svc.Chat, log),
		registration:  handler.NewRegistration(svc.Registration, log),
		notifications: handler.NewNotifications(svc.Notifications, log),
		geo:           handler.NewGeo(svc.Geo, svc.Engine, log),
		stateStream:   wshandler.NewStateStream(svc.StateSource, log),
	}

	api := &API{
		mux:    http.NewServeMux(),
		routes: routes,
		m:      middleware.NewMiddleware(svc.Sessions, log),
		addr:   cfg.Control.Addr(),
		cfg:    cfg,
		log:    log,
	}

	api.setupRoutes()

	api.server = &http.Server{
		Addr:    api.addr,
		Handler: api.withMiddleware(),
	}

	return api, nil
}

func (a *API) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ctx = wrap.WithAction(ctx, "http_server_stop")

	a.log.Debug(ctx, "shutting down HTTP server...", "address", a.addr)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	a.log.Debug(ctx, "shutting down HTTP server completed")

	return nil
}

func (a *API) Run(ctx context.Context, errCh chan<- error) {
	go func() {
		ctx = wrap.WithAction(ctx, "http_server_start")
		a.log.Info(ctx, "started http server", "address", a.addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start HTTP server: %w", err)
			return
		}
	}()
}

// withMiddleware applies middlewares to the mux
func (a *API) withMiddleware() http.Handler {
	return a.m.Recover(a.m.RequestID(a.m.Metrics(serviceName)(a.m.Logging(a.mux))))
}
