// Package chat serves the per-ride message thread. Messages live in the realtime
// store under the ride document; the thread is scoped to the ride the sender is
// actually on, and closes with the ride.
package chat

import (
	"context"
	"strings"

	"github.com/ridermi/rider-agent/internal/domain/models"
	"github.com/ridermi/rider-agent/internal/domain/types"
	"github.com/ridermi/rider-agent/pkg/logger"
	wrap "github.com/ridermi/rider-agent/pkg/logger/wrapper"
)

const maxMessageLen = 1000

type MessageStore interface {
	Messages(ctx context.Context, rideID string) ([]models.ChatMessage, error)
	SendMessage(ctx context.Context, rideID, senderID, text string) error
}

// ActiveRideSource tells which ride the signed-in rider currently holds.
type ActiveRideSource interface {
	Snapshot() models.EngineState
}

type Service struct {
	store  MessageStore
	engine ActiveRideSource
	l      logger.Logger
}

func New(store MessageStore, engine ActiveRideSource, l logger.Logger) *Service {
	return &Service{store: store, engine: engine, l: l}
}

// Messages returns the active ride's thread, oldest first.
func (s *Service) Messages(ctx context.Context) ([]models.ChatMessage, error) {
	rideID, err := s.activeRideID()
	if err != nil {
		return nil, err
	}

	ctx = wrap.WithRideID(ctx, rideID)
	msgs, err := s.store.Messages(ctx, rideID)
	if err != nil {
		s.l.Error(wrap.ErrorCtx(ctx, err), "failed to fetch chat messages", err)
		return nil, err
	}
	return msgs, nil
}

// Send appends one message from the rider to the active ride's thread.
func (s *Service) Send(ctx context.Context, senderID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" || len(text) > maxMessageLen {
		return types.ErrInvalidMessage
	}

	rideID, err := s.activeRideID()
	if err != nil {
		return err
	}

	ctx = wrap.WithLogCtx(ctx, wrap.LogCtx{Action: "send_chat_message", RideID: rideID})
	if err := s.store.SendMessage(ctx, rideID, senderID, text); err != nil {
		s.l.Error(wrap.ErrorCtx(ctx, err), "failed to send chat message", err)
		return err
	}
	return nil
}

// activeRideID resolves the thread's ride. Chat exists only while a ride is active.
func (s *Service) activeRideID() (string, error) {
	snap := s.engine.Snapshot()
	if snap.ActiveRideID == "" {
		return "", types.ErrNoActiveRide
	}
	return snap.ActiveRideID, nil
}
