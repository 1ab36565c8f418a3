package models

import (
	"time"

	"github.com/ridermi/rider-agent/internal/domain/types"
)

// RideSnapshot is the server-authoritative record of one delivery/ride. Field names
// follow the GraphQL API: `id` is the internal document id, `rideId` the public
// display id; mutations accept either as a lookup key.
type RideSnapshot struct {
	ID       string `json:"id"`
	PublicID string `json:"rideId"`

	Status types.RideStatus `json:"status"`

	PickupAddress  string   `json:"pickupAddress"`
	PickupLat      *float64 `json:"pickupLat"`
	PickupLng      *float64 `json:"pickupLng"`
	DropoffAddress string   `json:"dropoffAddress"`
	DropoffLat     *float64 `json:"dropoffLat"`
	DropoffLng     *float64 `json:"dropoffLng"`

	Fare            float64 `json:"fare"`
	DistanceMeters  float64 `json:"distance"`
	DurationSeconds float64 `json:"duration"`
	PaymentMethod   string  `json:"paymentMethod"`

	// RiderID is nil while the ride is unclaimed.
	RiderID *string `json:"riderId"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Key returns the identifier used for detail lookups: the internal id when present,
// the public id otherwise.
func (r *RideSnapshot) Key() string {
	if r.ID != "" {
		return r.ID
	}
	return r.PublicID
}

// RideHandle is the client-persisted pointer used to bridge an active ride across an
// agent restart. It is never trusted past its staleness window.
type RideHandle struct {
	SavedRideID string    `json:"saved_ride_id"`
	LastActive  time.Time `json:"last_active"`
}

// Stale reports whether the handle is older than the given window at time now.
func (h RideHandle) Stale(now time.Time, window time.Duration) bool {
	return now.Sub(h.LastActive) > window
}
