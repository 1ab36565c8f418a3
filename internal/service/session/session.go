package session

import (
	"context"
	"sync"
	"time"

	"github.com/ridermi/rider-agent/internal/domain/models"
	"github.com/ridermi/rider-agent/internal/domain/types"
	"github.com/ridermi/rider-agent/pkg/logger"
	wrap "github.com/ridermi/rider-agent/pkg/logger/wrapper"
)

// AuthProvider is the managed auth boundary: credential sign-in and token refresh.
type AuthProvider interface {
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*models.Session, error)
}

// Manager owns the signed-in rider's session. It is the token source for every
// remote adapter: Token refreshes transparently shortly before expiry.
type Manager struct {
	auth AuthProvider
	l    logger.Logger
	now  func() time.Time

	mu      sync.RWMutex
	session *models.Session
}

func NewManager(auth AuthProvider, l logger.Logger) *Manager {
	return &Manager{
		auth: auth,
		l:    l,
		now:  time.Now,
	}
}

// SignIn authenticates the rider and installs the session.
func (m *Manager) SignIn(ctx context.Context, email, password string) (models.Rider, error) {
	ctx = wrap.WithAction(ctx, "sign_in")

	sess, err := m.auth.SignIn(ctx, email, password)
	if err != nil {
		return models.Rider{}, err
	}

	m.mu.Lock()
	m.session = sess
	m.mu.Unlock()

	m.l.Info(wrap.WithRiderID(ctx, sess.Rider.UID), "rider signed in")
	return sess.Rider, nil
}

// SignOut drops the session. Remote token revocation is the provider's concern.
func (m *Manager) SignOut(ctx context.Context) {
	m.mu.Lock()
	m.session = nil
	m.mu.Unlock()

	m.l.Info(wrap.WithAction(ctx, "sign_out"), "rider signed out")
}

// Current returns the signed-in rider, if any.
func (m *Manager) Current() (models.Rider, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.session == nil {
		return models.Rider{}, false
	}
	return m.session.Rider, true
}

// Token returns a valid bearer token, refreshing if the current one is about to
// expire. A failed refresh drops the session: every caller then sees ErrNotSignedIn
// until the rider re-authenticates.
func (m *Manager) Token(ctx context.Context) (string, error) {
	m.mu.RLock()
	sess := m.session
	m.mu.RUnlock()

	if sess == nil {
		return "", types.ErrNotSignedIn
	}
	if !sess.Expired(m.now()) {
		return sess.IDToken, nil
	}

	ctx = wrap.WithAction(ctx, "token_refresh")

	fresh, err := m.auth.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		m.l.Error(wrap.ErrorCtx(ctx, err), "token refresh failed, dropping session", err)
		m.mu.Lock()
		m.session = nil
		m.mu.Unlock()
		return "", err
	}

	// Refresh responses may omit profile fields; keep what we had
	if fresh.Rider.Email == "" {
		fresh.Rider.Email = sess.Rider.Email
	}
	if fresh.Rider.DisplayName == "" {
		fresh.Rider.DisplayName = sess.Rider.DisplayName
	}

	m.mu.Lock()
	m.session = fresh
	m.mu.Unlock()

	return fresh.IDToken, nil
}
