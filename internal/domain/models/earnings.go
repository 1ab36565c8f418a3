package models

import "time"

// Earnings is the riderEarnings query result for one reporting period.
type Earnings struct {
	TotalEarnings float64 `json:"totalEarnings"`
	TotalRides    int     `json:"totalRides"`
	PeriodDays    int     `json:"periodDays"`
}

// HistoryEntry is one past ride in the rider's history list.
type HistoryEntry struct {
	ID          string    `json:"id"`
	PublicID    string    `json:"rideId"`
	Status      string    `json:"status"`
	Fare        float64   `json:"fare"`
	CompletedAt time.Time `json:"completedAt"`
}

// EarningsSummary is the aggregate over earnings and history shown by the stats view.
type EarningsSummary struct {
	Period         string  `json:"period"`
	TotalEarnings  float64 `json:"total_earnings"`
	TotalRides     int     `json:"total_rides"`
	CompletedRides int     `json:"completed_rides"`
	CancelledRides int     `json:"cancelled_rides"`
	AveragePerRide float64 `json:"average_per_ride"`
}
