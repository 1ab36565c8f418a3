package middleware

import (
	"github.com/ridermi/rider-agent/internal/domain/models"
	"github.com/ridermi/rider-agent/pkg/logger"
)

type (
	// SessionChecker reports the currently signed-in rider, if any.
	SessionChecker interface {
		Current() (models.Rider, bool)
	}

	Middleware struct {
		sessions SessionChecker
		log      logger.Logger
	}
)

func NewMiddleware(sessions SessionChecker, log logger.Logger) *Middleware {
	return &Middleware{
		sessions: sessions,
		log:      log,
	}
}
