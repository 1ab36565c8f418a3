package models

import "time"

// Banner is a transient user-visible error surfaced by the engine. The front-end
// hides it once ExpiresAt passes; the engine drops it from later snapshots.
type Banner struct {
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

// EngineState is one reconciled snapshot of everything the presentation layer needs.
type EngineState struct {
	Online bool `json:"online"`

	ActiveRideID string        `json:"active_ride_id,omitempty"`
	ActiveRide   *RideSnapshot `json:"active_ride,omitempty"`

	AvailableRides []RideSnapshot `json:"available_rides"`

	// DetailFailures counts consecutive detail poll failures. When PollingSuspended
	// is set the front-end must surface a manual retry affordance.
	DetailFailures   int  `json:"detail_failures"`
	PollingSuspended bool `json:"polling_suspended"`

	// ReauthRequired is set after an authentication failure cleared local state.
	ReauthRequired bool `json:"reauth_required"`

	Banner *Banner `json:"banner,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}
