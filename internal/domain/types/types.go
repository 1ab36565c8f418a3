package types

// RideStatus is the server-side status of a ride/delivery.
type RideStatus string

func (s RideStatus) String() string {
	return string(s)
}

const (
	StatusUnassigned       RideStatus = "UNASSIGNED"
	StatusAccepted         RideStatus = "ACCEPTED"
	StatusArrivedAtPickup  RideStatus = "ARRIVED_AT_PICKUP"
	StatusPickedUp         RideStatus = "PICKED_UP"
	StatusArrivedAtDropoff RideStatus = "ARRIVED_AT_DROPOFF"
	StatusCompleted        RideStatus = "COMPLETED"
	StatusCancelled        RideStatus = "CANCELLED"
)

// Terminal reports whether the status ends the ride lifecycle.
func (s RideStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// EarningsPeriod selects the reporting window for earnings queries.
type EarningsPeriod string

const (
	PeriodToday EarningsPeriod = "today"
	PeriodWeek  EarningsPeriod = "week"
	PeriodMonth EarningsPeriod = "month"
)

// Valid reports whether the period is one of today/week/month.
func (p EarningsPeriod) Valid() bool {
	switch p {
	case PeriodToday, PeriodWeek, PeriodMonth:
		return true
	default:
		return false
	}
}

// Days maps a period to the day count the riderEarnings query expects.
func (p EarningsPeriod) Days() int {
	switch p {
	case PeriodWeek:
		return 7
	case PeriodMonth:
		return 30
	default:
		return 1
	}
}

// RegistrationStep is one page of the rider registration wizard.
type RegistrationStep int

const (
	StepPersonalInfo RegistrationStep = iota + 1
	StepVehicleInfo
	StepStateSelection
	StepDocuments

	RegistrationStepCount = int(StepDocuments)
)

// VehicleType of the rider registration form.
type VehicleType string

const (
	VehicleBicycle    VehicleType = "BICYCLE"
	VehicleMotorcycle VehicleType = "MOTORCYCLE"
	VehicleCar        VehicleType = "CAR"
)
