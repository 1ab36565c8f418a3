// Package wshandler streams reconciled engine state to the front-end over
// WebSocket. Push replaces the front-end polling the snapshot endpoint; the
// stream is one-way and every message is a full snapshot, so a dropped or
// reconnected client never needs replay.
package wshandler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ridermi/rider-agent/internal/domain/models"
	"github.com/ridermi/rider-agent/pkg/logger"
	wrap "github.com/ridermi/rider-agent/pkg/logger/wrapper"
	"github.com/ridermi/rider-agent/pkg/metrics"
)

const (
	serviceName = "rider-agent"

	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

type StateSource interface {
	Snapshot() models.EngineState
	Subscribe() (<-chan models.EngineState, func())
}

type StateStream struct {
	source   StateSource
	upgrader websocket.Upgrader
	l        logger.Logger
}

func NewStateStream(source StateSource, l logger.Logger) *StateStream {
	return &StateStream{
		source: source,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Local control API: the front-end is served from localhost too
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		l: l,
	}
}

// HandleWebSocket upgrades the connection and pushes state snapshots until the
// client goes away.
func (h *StateStream) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "state_stream")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to upgrade connection", err)
		return
	}
	defer conn.Close()

	metrics.WebSocketConnectionsGauge.WithLabelValues(serviceName).Inc()
	defer metrics.WebSocketConnectionsGauge.WithLabelValues(serviceName).Dec()

	h.l.Info(ctx, "state stream connected", "remote", r.RemoteAddr)

	updates, cancel := h.source.Subscribe()
	defer cancel()

	// Reader goroutine: the client sends nothing meaningful, but reads must be
	// drained for close and pong frames to be processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// First frame is the current snapshot so the client renders immediately
	if err := h.send(conn, h.source.Snapshot()); err != nil {
		h.l.Warn(ctx, "failed to send initial snapshot", "err", err.Error())
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			h.l.Info(ctx, "state stream disconnected", "remote", r.RemoteAddr)
			return

		case snap, ok := <-updates:
			if !ok {
				return
			}
			if err := h.send(conn, snap); err != nil {
				h.l.Warn(ctx, "failed to push state snapshot", "err", err.Error())
				return
			}

		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				h.l.Warn(ctx, "ping failed, dropping connection", "err", err.Error())
				return
			}
		}
	}
}

func (h *StateStream) send(conn *websocket.Conn, snap models.EngineState) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(snap)
}
