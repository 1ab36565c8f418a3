package engine

import (
	"context"
	"time"

	"github.com/ridermi/rider-agent/internal/domain/models"
	"github.com/ridermi/rider-agent/internal/domain/types"
)

/*=================Ride Action Gateway======================*/

// RideGateway is the mutation boundary. Calls are opaque and never retried here;
// retry is a user action.
type RideGateway interface {
	Accept(ctx context.Context, rideID string) (*models.RideSnapshot, error)
	UpdateStatus(ctx context.Context, rideID string, status types.RideStatus, confirmCode string) (*models.RideSnapshot, error)
}

/*=================Server Sync Source======================*/

// SyncSource is the query boundary for the three polls. ActiveRide is the
// authoritative lookup: (nil, nil) means the server confirms no active ride.
// Ride reports an authoritative miss as types.ErrRideNotFound, distinct from
// transport errors.
type SyncSource interface {
	AvailableRides(ctx context.Context) ([]models.RideSnapshot, error)
	ActiveRide(ctx context.Context) (*models.RideSnapshot, error)
	Ride(ctx context.Context, id string) (*models.RideSnapshot, error)
}

/*=================Local Persistence======================*/

type HandleStore interface {
	Handle(riderUID string) (models.RideHandle, error)
	SaveHandle(riderUID, rideID string, now time.Time) error
	ClearHandle(riderUID string) error
	Presence(riderUID string) (bool, error)
	SavePresence(riderUID string, online bool) error
}

/*=================Remote Presence======================*/

type PresenceStore interface {
	ReadPresence(ctx context.Context, riderUID string) (models.Presence, error)
	WritePresence(ctx context.Context, riderUID string, online bool) error
	WriteLocation(ctx context.Context, riderUID string, lat, lng float64) error
}
