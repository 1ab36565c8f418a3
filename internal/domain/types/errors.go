package types

import "errors"

var (
	ErrNotSignedIn     = errors.New("not signed in")
	ErrUnauthenticated = errors.New("authentication failed")

	ErrRideNotFound      = errors.New("ride not found")
	ErrRideAlreadyActive = errors.New("another ride is already active")
	ErrRideAlreadyTaken  = errors.New("ride already claimed by another rider")
	ErrNoActiveRide      = errors.New("no active ride")
	ErrRideFinished      = errors.New("ride already reached a terminal status")

	ErrInvalidTransition   = errors.New("status transition not allowed")
	ErrInvalidDeliveryCode = errors.New("delivery code must be exactly 6 digits")
	ErrCodeRejected        = errors.New("delivery code rejected by server")

	ErrOfflineWithActiveRide = errors.New("cannot go offline during an active ride")

	ErrInvalidMessage = errors.New("message must be non-empty and under the length limit")

	ErrNotFound = errors.New("requested item not found")

	ErrPollingSuspended = errors.New("detail polling suspended, manual retry required")
)
