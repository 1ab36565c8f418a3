package engine

import (
	"regexp"

	"github.com/ridermi/rider-agent/internal/domain/types"
)

// statusSequence is the strict linear walk of an in-progress ride. No skipping, no
// going back; CANCELLED is reachable from any non-terminal status instead.
var statusSequence = []types.RideStatus{
	types.StatusAccepted,
	types.StatusArrivedAtPickup,
	types.StatusPickedUp,
	types.StatusArrivedAtDropoff,
	types.StatusCompleted,
}

// NextStatus returns the single legal forward transition from current.
func NextStatus(current types.RideStatus) (types.RideStatus, error) {
	for i, s := range statusSequence {
		if s == current && i < len(statusSequence)-1 {
			return statusSequence[i+1], nil
		}
	}
	if current.Terminal() {
		return "", types.ErrRideFinished
	}
	return "", types.ErrInvalidTransition
}

// CanCancel reports whether a ride in the given status may still be cancelled.
func CanCancel(current types.RideStatus) bool {
	return !current.Terminal()
}

// deliveryCodeFmt: the confirmation code the customer hands over is exactly six
// digits. Validated client-side before any network call; the server validates the
// actual value.
var deliveryCodeFmt = regexp.MustCompile(`^[0-9]{6}$`)

func ValidDeliveryCode(code string) bool {
	return deliveryCodeFmt.MatchString(code)
}
