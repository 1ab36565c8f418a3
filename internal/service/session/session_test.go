package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ridermi/rider-agent/internal/domain/models"
	"github.com/ridermi/rider-agent/internal/domain/types"
	"github.com/ridermi/rider-agent/pkg/logger"
)

type fakeAuth struct {
	signInFn  func(email, password string) (*models.Session, error)
	refreshFn func(refreshToken string) (*models.Session, error)
	refreshes int
}

func (a *fakeAuth) SignIn(_ context.Context, email, password string) (*models.Session, error) {
	return a.signInFn(email, password)
}

func (a *fakeAuth) Refresh(_ context.Context, refreshToken string) (*models.Session, error) {
	a.refreshes++
	return a.refreshFn(refreshToken)
}

func session(token string, expiresAt time.Time) *models.Session {
	return &models.Session{
		Rider:        models.Rider{UID: "rider-42", Email: "rider@example.com"},
		IDToken:      token,
		RefreshToken: "refresh-1",
		ExpiresAt:    expiresAt,
	}
}

func TestToken_NotSignedIn(t *testing.T) {
	m := NewManager(&fakeAuth{}, logger.InitLogger("session-test", logger.LevelError))

	if _, err := m.Token(context.Background()); !errors.Is(err, types.ErrNotSignedIn) {
		t.Fatalf("expected ErrNotSignedIn, got %v", err)
	}
}

func TestToken_FreshTokenServedWithoutRefresh(t *testing.T) {
	base := time.Now()
	auth := &fakeAuth{
		signInFn: func(string, string) (*models.Session, error) {
			return session("token-1", base.Add(time.Hour)), nil
		},
	}
	m := NewManager(auth, logger.InitLogger("session-test", logger.LevelError))
	m.now = func() time.Time { return base }

	if _, err := m.SignIn(context.Background(), "rider@example.com", "pw"); err != nil {
		t.Fatalf("sign in failed: %v", err)
	}

	token, err := m.Token(context.Background())
	if err != nil || token != "token-1" {
		t.Fatalf("expected token-1, got %q %v", token, err)
	}
	if auth.refreshes != 0 {
		t.Fatalf("fresh token must not trigger a refresh")
	}
}

func TestToken_RefreshesBeforeExpiry(t *testing.T) {
	base := time.Now()
	auth := &fakeAuth{
		signInFn: func(string, string) (*models.Session, error) {
			// Inside the pre-expiry skew: should refresh on next Token call
			return session("token-1", base.Add(10*time.Second)), nil
		},
		refreshFn: func(refreshToken string) (*models.Session, error) {
			if refreshToken != "refresh-1" {
				t.Fatalf("unexpected refresh token %q", refreshToken)
			}
			return session("token-2", base.Add(time.Hour)), nil
		},
	}
	m := NewManager(auth, logger.InitLogger("session-test", logger.LevelError))
	m.now = func() time.Time { return base }

	if _, err := m.SignIn(context.Background(), "rider@example.com", "pw"); err != nil {
		t.Fatalf("sign in failed: %v", err)
	}

	token, err := m.Token(context.Background())
	if err != nil || token != "token-2" {
		t.Fatalf("expected refreshed token-2, got %q %v", token, err)
	}
	if auth.refreshes != 1 {
		t.Fatalf("expected exactly one refresh, got %d", auth.refreshes)
	}
}

func TestToken_FailedRefreshDropsSession(t *testing.T) {
	base := time.Now()
	auth := &fakeAuth{
		signInFn: func(string, string) (*models.Session, error) {
			return session("token-1", base.Add(-time.Minute)), nil
		},
		refreshFn: func(string) (*models.Session, error) {
			return nil, errors.New("refresh token revoked")
		},
	}
	m := NewManager(auth, logger.InitLogger("session-test", logger.LevelError))
	m.now = func() time.Time { return base }

	if _, err := m.SignIn(context.Background(), "rider@example.com", "pw"); err != nil {
		t.Fatalf("sign in failed: %v", err)
	}

	if _, err := m.Token(context.Background()); err == nil {
		t.Fatalf("expected refresh error")
	}
	if _, ok := m.Current(); ok {
		t.Fatalf("failed refresh must drop the session")
	}
	if _, err := m.Token(context.Background()); !errors.Is(err, types.ErrNotSignedIn) {
		t.Fatalf("expected ErrNotSignedIn after dropped session, got %v", err)
	}
}

func TestRefresh_KeepsProfileFields(t *testing.T) {
	base := time.Now()
	auth := &fakeAuth{
		signInFn: func(string, string) (*models.Session, error) {
			s := session("token-1", base.Add(-time.Minute))
			s.Rider.DisplayName = "Aruzhan"
			return s, nil
		},
		refreshFn: func(string) (*models.Session, error) {
			s := session("token-2", base.Add(time.Hour))
			s.Rider.Email = ""
			s.Rider.DisplayName = ""
			return s, nil
		},
	}
	m := NewManager(auth, logger.InitLogger("session-test", logger.LevelError))
	m.now = func() time.Time { return base }

	if _, err := m.SignIn(context.Background(), "rider@example.com", "pw"); err != nil {
		t.Fatalf("sign in failed: %v", err)
	}
	if _, err := m.Token(context.Background()); err != nil {
		t.Fatalf("token failed: %v", err)
	}

	rider, ok := m.Current()
	if !ok || rider.Email != "rider@example.com" || rider.DisplayName != "Aruzhan" {
		t.Fatalf("profile fields must survive a sparse refresh, got %+v", rider)
	}
}
