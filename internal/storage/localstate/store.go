// Package localstate is the agent's client-local persistence: a handful of small
// JSON records per signed-in rider, the Go rendition of the web client's
// localStorage. Files are namespaced by the SHA-256 of the rider uid so switching
// accounts on one device cannot leak state between riders. Single-writer is
// assumed; concurrent agents over one state dir are not coordinated.
package localstate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ridermi/rider-agent/internal/domain/models"
	"github.com/ridermi/rider-agent/internal/domain/types"
	"github.com/ridermi/rider-agent/pkg/hasher"
)

type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create state dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

const (
	kindHandle   = "handle"
	kindPresence = "presence"
	kindDraft    = "registration"
)

func (s *Store) path(riderUID, kind string) string {
	// First 16 hex chars are plenty for a per-device namespace
	prefix := hasher.Hash(riderUID)[:16]
	return filepath.Join(s.dir, prefix+"."+kind+".json")
}

func (s *Store) read(riderUID, kind string, out any) error {
	data, err := os.ReadFile(s.path(riderUID, kind))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return types.ErrNotFound
		}
		return fmt.Errorf("failed to read %s state: %w", kind, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		// A corrupt record is treated as absent: local state is only ever a hint
		return types.ErrNotFound
	}
	return nil
}

func (s *Store) write(riderUID, kind string, in any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode %s state: %w", kind, err)
	}

	path := s.path(riderUID, kind)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s state: %w", kind, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s state: %w", kind, err)
	}
	return nil
}

func (s *Store) clear(riderUID, kind string) error {
	err := os.Remove(s.path(riderUID, kind))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear %s state: %w", kind, err)
	}
	return nil
}

/* ======================= active ride handle ======================= */

// Handle returns the persisted active-ride pointer. types.ErrNotFound when none is
// saved.
func (s *Store) Handle(riderUID string) (models.RideHandle, error) {
	var h models.RideHandle
	if err := s.read(riderUID, kindHandle, &h); err != nil {
		return models.RideHandle{}, err
	}
	return h, nil
}

// SaveHandle persists the active-ride pointer with a fresh activity timestamp.
func (s *Store) SaveHandle(riderUID, rideID string, now time.Time) error {
	return s.write(riderUID, kindHandle, models.RideHandle{
		SavedRideID: rideID,
		LastActive:  now,
	})
}

// ClearHandle removes the pointer. Clearing an absent handle is a no-op.
func (s *Store) ClearHandle(riderUID string) error {
	return s.clear(riderUID, kindHandle)
}

/* ======================= presence mirror ======================= */

// Presence returns the locally mirrored online flag, defaulting to offline when no
// mirror exists yet.
func (s *Store) Presence(riderUID string) (bool, error) {
	var p struct {
		Online bool `json:"online"`
	}
	if err := s.read(riderUID, kindPresence, &p); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return p.Online, nil
}

// SavePresence mirrors the online flag for instant reflection before the server
// round-trip confirms it.
func (s *Store) SavePresence(riderUID string, online bool) error {
	return s.write(riderUID, kindPresence, struct {
		Online bool `json:"online"`
	}{Online: online})
}

/* ======================= registration draft ======================= */

func (s *Store) Draft(riderUID string) (models.RegistrationDraft, error) {
	var d models.RegistrationDraft
	if err := s.read(riderUID, kindDraft, &d); err != nil {
		return models.RegistrationDraft{}, err
	}
	return d, nil
}

func (s *Store) SaveDraft(riderUID string, d models.RegistrationDraft) error {
	return s.write(riderUID, kindDraft, d)
}

func (s *Store) ClearDraft(riderUID string) error {
	return s.clear(riderUID, kindDraft)
}
