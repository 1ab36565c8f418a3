package graphql

import (
	"context"

	"github.com/ridermi/rider-agent/internal/domain/models"
)

const riderRidesQuery = `
	query GetRiderRides {
		riderRides {
			id
			rideId
			status
			fare
			completedAt
		}
	}
`

const riderEarningsQuery = `
	query GetRiderEarnings($periodDays: Int!) {
		riderEarnings(periodDays: $periodDays) {
			totalEarnings
			totalRides
			periodDays
		}
	}
`

const updateRiderProfileMutation = `
	mutation UpdateRiderProfile($input: RiderProfileInput!) {
		updateRiderProfile(input: $input) {
			id
			uid
			displayName
			phoneNumber
		}
	}
`

// RiderRides returns the rider's past rides, newest first.
func (c *Client) RiderRides(ctx context.Context) ([]models.HistoryEntry, error) {
	var out struct {
		RiderRides []models.HistoryEntry `json:"riderRides"`
	}
	if err := c.do(ctx, "rider_rides", riderRidesQuery, nil, &out); err != nil {
		return nil, err
	}
	return out.RiderRides, nil
}

// RiderEarnings returns aggregated earnings over the last periodDays days.
func (c *Client) RiderEarnings(ctx context.Context, periodDays int) (models.Earnings, error) {
	var out struct {
		RiderEarnings models.Earnings `json:"riderEarnings"`
	}
	if err := c.do(ctx, "rider_earnings", riderEarningsQuery, map[string]any{"periodDays": periodDays}, &out); err != nil {
		return models.Earnings{}, err
	}
	return out.RiderEarnings, nil
}

// UpdateRiderProfile submits the completed registration wizard data.
func (c *Client) UpdateRiderProfile(ctx context.Context, input models.ProfileUpdate) error {
	return c.do(ctx, "update_rider_profile", updateRiderProfileMutation, map[string]any{"input": input}, nil)
}
