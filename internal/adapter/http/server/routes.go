package server

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRoutes - setups http routes
func (a *API) setupRoutes() {
	// System
	a.mux.HandleFunc("/health", a.routes.health.HealthCheck)
	a.mux.Handle("/metrics", promhttp.Handler())

	// Session
	a.mux.HandleFunc("POST /session", a.routes.session.SignIn)
	a.mux.HandleFunc("DELETE /session", a.routes.session.SignOut)
	a.mux.HandleFunc("GET /session", a.routes.session.Me)

	// Reconciled state
	a.mux.Handle("GET /state", a.m.RequireSession(a.routes.ride.State))
	a.mux.HandleFunc("GET /ws/state", a.routes.stateStream.HandleWebSocket)

	// Presence & location
	a.mux.Handle("POST /presence/online", a.m.RequireSession(a.routes.presence.GoOnline))
	a.mux.Handle("POST /presence/offline", a.m.RequireSession(a.routes.presence.GoOffline))
	a.mux.Handle("POST /location", a.m.RequireSession(a.routes.presence.UpdateLocation))

	// Rides
	a.mux.Handle("GET /rides/available", a.m.RequireSession(a.routes.ride.Available))
	a.mux.Handle("POST /rides/{ride_id}/accept", a.m.RequireSession(a.routes.ride.Accept))
	a.mux.Handle("POST /rides/active/advance", a.m.RequireSession(a.routes.ride.Advance))
	a.mux.Handle("POST /rides/active/cancel", a.m.RequireSession(a.routes.ride.Cancel))
	a.mux.Handle("POST /rides/active/retry", a.m.RequireSession(a.routes.ride.RetryDetail))
	a.mux.Handle("GET /rides/history", a.m.RequireSession(a.routes.earnings.History))

	// Earnings
	a.mux.Handle("GET /earnings", a.m.RequireSession(a.routes.earnings.Summary))

	// Chat (active ride thread)
	a.mux.Handle("GET /chat/messages", a.m.RequireSession(a.routes.chat.Messages))
	a.mux.Handle("POST /chat/messages", a.m.RequireSession(a.routes.chat.Send))

	// Registration wizard
	a.mux.Handle("GET /registration/draft", a.m.RequireSession(a.routes.registration.Draft))
	a.mux.Handle("PUT /registration/personal", a.m.RequireSession(a.routes.registration.SavePersonal))
	a.mux.Handle("PUT /registration/vehicle", a.m.RequireSession(a.routes.registration.SaveVehicle))
	a.mux.Handle("PUT /registration/states", a.m.RequireSession(a.routes.registration.SaveStates))
	a.mux.Handle("PUT /registration/documents", a.m.RequireSession(a.routes.registration.SaveDocuments))
	a.mux.Handle("POST /registration/submit", a.m.RequireSession(a.routes.registration.Submit))

	// Notifications
	a.mux.Handle("GET /notifications", a.m.RequireSession(a.routes.notifications.List))
	a.mux.Handle("POST /notifications/token", a.m.RequireSession(a.routes.notifications.RegisterToken))

	// Geo (display helpers)
	a.mux.Handle("GET /geo/reverse", a.m.RequireSession(a.routes.geo.Reverse))
	a.mux.Handle("GET /geo/search", a.m.RequireSession(a.routes.geo.Search))
	a.mux.Handle("GET /geo/route", a.m.RequireSession(a.routes.geo.ActiveRoute))
}
