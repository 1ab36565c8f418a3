package firebase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ridermi/rider-agent/internal/domain/models"
)

// Chat messages live in rides/{rideId}/messages, one document per message.

// Messages returns a ride's chat thread ordered by creation time ascending.
func (c *StoreClient) Messages(ctx context.Context, rideID string) ([]models.ChatMessage, error) {
	docs, err := c.listDocs(ctx, fmt.Sprintf("rides/%s/messages", rideID))
	if err != nil {
		return nil, err
	}

	out := make([]models.ChatMessage, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.ChatMessage{
			ID:        d.docID(),
			Text:      d.Fields["text"].str(),
			SenderID:  d.Fields["senderId"].str(),
			CreatedAt: d.Fields["createdAt"].timestamp(),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// SendMessage appends one message to a ride's chat thread.
func (c *StoreClient) SendMessage(ctx context.Context, rideID, senderID, text string) error {
	return c.createDoc(ctx, fmt.Sprintf("rides/%s/messages", rideID), map[string]value{
		"text":      strVal(text),
		"senderId":  strVal(senderID),
		"createdAt": timeVal(time.Now()),
	})
}
