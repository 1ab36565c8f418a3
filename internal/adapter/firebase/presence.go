package firebase

import (
	"context"
	"fmt"
	"time"

	"github.com/ridermi/rider-agent/internal/domain/models"
)

// Presence documents live at riders/{uid}; best-effort locations at
// rider-locations/{uid}.

// ReadPresence fetches the rider's presence document. types.ErrNotFound means the
// rider has never gone online on any device.
func (c *StoreClient) ReadPresence(ctx context.Context, riderUID string) (models.Presence, error) {
	doc, err := c.getDoc(ctx, "riders/"+riderUID)
	if err != nil {
		return models.Presence{}, err
	}

	return models.Presence{
		Online:    doc.Fields["available"].boolean(),
		FCMToken:  doc.Fields["fcmToken"].str(),
		UpdatedAt: doc.Fields["updatedAt"].timestamp(),
	}, nil
}

// WritePresence merges the availability flag into the rider's presence document.
func (c *StoreClient) WritePresence(ctx context.Context, riderUID string, online bool) error {
	return c.patchDoc(ctx, "riders/"+riderUID, map[string]value{
		"available": boolVal(online),
		"updatedAt": timeVal(time.Now()),
	})
}

// RegisterPushToken stores the push-notification token alongside presence, the same
// merge the web client performs on sign-in.
func (c *StoreClient) RegisterPushToken(ctx context.Context, riderUID, fcmToken string) error {
	return c.patchDoc(ctx, "riders/"+riderUID, map[string]value{
		"fcmToken":  strVal(fcmToken),
		"available": boolVal(true),
		"updatedAt": timeVal(time.Now()),
	})
}

// WriteLocation pushes a best-effort location update.
func (c *StoreClient) WriteLocation(ctx context.Context, riderUID string, lat, lng float64) error {
	return c.patchDoc(ctx, "rider-locations/"+riderUID, map[string]value{
		"latitude":  doubleVal(lat),
		"longitude": doubleVal(lng),
		"updatedAt": timeVal(time.Now()),
	})
}

// Notifications returns the rider-targeted notification feed.
func (c *StoreClient) Notifications(ctx context.Context, riderUID string) ([]models.Notification, error) {
	docs, err := c.listDocs(ctx, fmt.Sprintf("rider-notifications/%s/items", riderUID))
	if err != nil {
		return nil, err
	}

	out := make([]models.Notification, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.Notification{
			ID:        d.docID(),
			Title:     d.Fields["title"].str(),
			Body:      d.Fields["body"].str(),
			RideID:    d.Fields["rideId"].str(),
			CreatedAt: d.Fields["createdAt"].timestamp(),
			Read:      d.Fields["read"].boolean(),
		})
	}
	return out, nil
}
