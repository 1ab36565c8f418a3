package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ridermi/rider-agent/internal/domain/models"
	"github.com/ridermi/rider-agent/internal/domain/types"
	"github.com/ridermi/rider-agent/pkg/logger"
)

type fakeStore struct {
	messages []models.ChatMessage
	sent     []string
}

func (s *fakeStore) Messages(_ context.Context, rideID string) ([]models.ChatMessage, error) {
	return s.messages, nil
}

func (s *fakeStore) SendMessage(_ context.Context, rideID, senderID, text string) error {
	s.sent = append(s.sent, text)
	return nil
}

type fakeEngine struct {
	rideID string
}

func (e *fakeEngine) Snapshot() models.EngineState {
	return models.EngineState{ActiveRideID: e.rideID}
}

func newService(st *fakeStore, rideID string) *Service {
	return New(st, &fakeEngine{rideID: rideID}, logger.InitLogger("chat-test", logger.LevelError))
}

func TestSend_RequiresActiveRide(t *testing.T) {
	s := newService(&fakeStore{}, "")

	if err := s.Send(context.Background(), "rider-42", "on my way"); !errors.Is(err, types.ErrNoActiveRide) {
		t.Fatalf("expected ErrNoActiveRide, got %v", err)
	}
}

func TestSend_TrimsAndValidates(t *testing.T) {
	st := &fakeStore{}
	s := newService(st, "R1")

	if err := s.Send(context.Background(), "rider-42", "  on my way  "); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if len(st.sent) != 1 || st.sent[0] != "on my way" {
		t.Fatalf("expected trimmed message, got %v", st.sent)
	}

	if err := s.Send(context.Background(), "rider-42", "   "); !errors.Is(err, types.ErrInvalidMessage) {
		t.Fatalf("blank message must be rejected, got %v", err)
	}
	if err := s.Send(context.Background(), "rider-42", strings.Repeat("x", 2000)); !errors.Is(err, types.ErrInvalidMessage) {
		t.Fatalf("oversized message must be rejected, got %v", err)
	}
}

func TestMessages_RequiresActiveRide(t *testing.T) {
	s := newService(&fakeStore{}, "")

	if _, err := s.Messages(context.Background()); !errors.Is(err, types.ErrNoActiveRide) {
		t.Fatalf("expected ErrNoActiveRide, got %v", err)
	}
}
