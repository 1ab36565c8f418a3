package models

import "time"

// ChatMessage is one message in a ride's chat thread
// (rides/{rideId}/messages in the realtime store).
type ChatMessage struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	SenderID  string    `json:"senderId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notification is one entry of the rider-targeted notification feed.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	RideID    string    `json:"rideId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Read      bool      `json:"read"`
}
