package models

import "time"

// Presence is the rider availability document kept in the realtime store
// (riders/{uid}), mirrored locally for instant UI reflection.
type Presence struct {
	Online    bool      `json:"available"`
	FCMToken  string    `json:"fcmToken,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}
