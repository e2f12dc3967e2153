// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package workspace

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/taibuivan/arcana/internal/platform/ctxutil"
	"github.com/taibuivan/arcana/internal/platform/respond"
	"github.com/taibuivan/arcana/internal/tarot/session"
)

// EventSnapshot is the type of the first message on a stream: the state at
// the time of connecting.
const EventSnapshot session.EventType = "snapshot"

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

/*
StreamEvents upgrades to a websocket and forwards every session event.

GET /api/v1/session/events?access_token=...

Each message is a JSON session.Event. The stream ends when the client goes
away, or when the session signs out and its emitter closes. Messages sent by
the client are ignored.
*/
func (handler *Handler) streamEvents(writer http.ResponseWriter, request *http.Request) {
	workspace, err := handler.workspace(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	logger := ctxutil.Logger(request.Context())

	// Upgrade writes its own error response.
	conn, err := handler.upgrader.Upgrade(writer, request, nil)
	if err != nil {
		logger.WarnContext(request.Context(), "event_stream_upgrade_failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	events, unsubscribe := workspace.Session().Emitter().Subscribe()
	defer unsubscribe()

	closed := make(chan struct{})
	go readPump(conn, closed)

	initial := session.Event{Type: EventSnapshot, State: workspace.Session().Snapshot()}
	if err := writeEvent(conn, initial); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
				return
			}
			if err := writeEvent(conn, event); err != nil {
				logger.DebugContext(request.Context(), "event_stream_write_failed", slog.Any("error", err))
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-closed:
			return
		}
	}
}

// readPump drains client frames so pongs and close frames are processed.
// It closes done when the connection fails.
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writeEvent(conn *websocket.Conn, event session.Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(event)
}
