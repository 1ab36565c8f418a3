package graphql

import (
	"context"

	"github.com/ridermi/rider-agent/internal/domain/models"
	"github.com/ridermi/rider-agent/internal/domain/types"
	wrap "github.com/ridermi/rider-agent/pkg/logger/wrapper"
)

const rideFields = `
	id
	rideId
	status
	pickupAddress
	pickupLat
	pickupLng
	dropoffAddress
	dropoffLat
	dropoffLng
	fare
	distance
	duration
	paymentMethod
	riderId
	createdAt
	updatedAt
`

const availableRidesQuery = `
	query GetAvailableRides {
		availableRides {` + rideFields + `}
	}
`

const activeRiderRideQuery = `
	query GetActiveRiderRide {
		activeRiderRide {` + rideFields + `}
	}
`

const rideQuery = `
	query GetRide($id: ID!) {
		ride(id: $id) {` + rideFields + `}
	}
`

const acceptRideMutation = `
	mutation AcceptRide($rideId: ID!) {
		acceptRide(rideId: $rideId) {` + rideFields + `}
	}
`

const updateRideStatusMutation = `
	mutation UpdateRideStatus($rideId: ID!, $status: String!, $confirmCode: String) {
		updateRideStatus(rideId: $rideId, status: $status, confirmCode: $confirmCode) {` + rideFields + `}
	}
`

// AvailableRides returns the current set of unclaimed rides.
func (c *Client) AvailableRides(ctx context.Context) ([]models.RideSnapshot, error) {
	var out struct {
		AvailableRides []models.RideSnapshot `json:"availableRides"`
	}
	if err := c.do(ctx, "available_rides", availableRidesQuery, nil, &out); err != nil {
		return nil, err
	}
	return out.AvailableRides, nil
}

// ActiveRide is the authoritative "my active ride" lookup. A nil snapshot with a nil
// error means the server confirms no active ride exists for this rider.
func (c *Client) ActiveRide(ctx context.Context) (*models.RideSnapshot, error) {
	var out struct {
		ActiveRiderRide *models.RideSnapshot `json:"activeRiderRide"`
	}
	if err := c.do(ctx, "active_ride_lookup", activeRiderRideQuery, nil, &out); err != nil {
		return nil, err
	}
	return out.ActiveRiderRide, nil
}

// Ride fetches one ride's full detail. A null ride without a transport error is an
// authoritative "no such ride" and is reported as ErrRideNotFound so the caller can
// distinguish it from a failed fetch.
func (c *Client) Ride(ctx context.Context, id string) (*models.RideSnapshot, error) {
	ctx = wrap.WithRideID(ctx, id)

	var out struct {
		Ride *models.RideSnapshot `json:"ride"`
	}
	if err := c.do(ctx, "ride_detail", rideQuery, map[string]any{"id": id}, &out); err != nil {
		return nil, err
	}
	if out.Ride == nil {
		return nil, wrap.Error(ctx, types.ErrRideNotFound)
	}
	return out.Ride, nil
}

// Accept claims an unclaimed ride for the signed-in rider.
func (c *Client) Accept(ctx context.Context, rideID string) (*models.RideSnapshot, error) {
	ctx = wrap.WithRideID(ctx, rideID)

	var out struct {
		AcceptRide *models.RideSnapshot `json:"acceptRide"`
	}
	if err := c.do(ctx, "accept_ride", acceptRideMutation, map[string]any{"rideId": rideID}, &out); err != nil {
		return nil, err
	}
	if out.AcceptRide == nil {
		return nil, wrap.Error(ctx, types.ErrRideNotFound)
	}
	return out.AcceptRide, nil
}

// UpdateStatus submits a status transition. confirmCode is only sent when non-empty
// (completion step).
func (c *Client) UpdateStatus(ctx context.Context, rideID string, status types.RideStatus, confirmCode string) (*models.RideSnapshot, error) {
	ctx = wrap.WithRideID(ctx, rideID)

	vars := map[string]any{
		"rideId": rideID,
		"status": status.String(),
	}
	if confirmCode != "" {
		vars["confirmCode"] = confirmCode
	}

	var out struct {
		UpdateRideStatus *models.RideSnapshot `json:"updateRideStatus"`
	}
	if err := c.do(ctx, "update_ride_status", updateRideStatusMutation, vars, &out); err != nil {
		return nil, err
	}
	if out.UpdateRideStatus == nil {
		return nil, wrap.Error(ctx, types.ErrRideNotFound)
	}
	return out.UpdateRideStatus, nil
}
