package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/DoyleJ11/bgg-shelf-mapper/internal/hub"
	"github.com/DoyleJ11/bgg-shelf-mapper/internal/logger"
	"github.com/DoyleJ11/bgg-shelf-mapper/internal/session"
	"github.com/DoyleJ11/bgg-shelf-mapper/internal/types"
	"github.com/DoyleJ11/bgg-shelf-mapper/internal/view"
	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	writeTimeout = 3 * time.Second
	// Pages sit idle for long stretches; the browser reconnects if this trips.
	readTimeout = 10 * time.Minute
	outboxSize  = 8
)

func Handler(h *hub.Hub, r *view.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		id := req.URL.Query().Get("session")
		if id == "" {
			http.Error(w, "missing session", http.StatusBadRequest)
			return
		}

		s, err := h.Get(req.Context(), id)
		if err != nil {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		if s == nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, req, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		clientID := uuid.NewString()
		log := logger.FromContext(req.Context()).With(
			zap.String("session_id", id), zap.String("client_id", clientID))

		out := make(chan session.Snapshot, outboxSize)
		if !s.Send(req.Context(), session.Join{ClientID: clientID, Outbox: out}) {
			return
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			s.Send(ctx, session.Leave{ClientID: clientID})
		}()

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(req.Context())
		defer writeCancel()
		go func() {
			for {
				select {
				case snap, ok := <-out:
					if !ok {
						// dropped as too slow, or the session ended
						conn.Close(websocket.StatusTryAgainLater, "session closed")
						return
					}
					html, err := r.Shell(snap.State)
					if err != nil {
						log.Error("render failed", zap.Error(err))
						continue
					}
					msg := types.ServerMessage{Type: "Render", Version: snap.Version, HTML: html}
					if err := write(writeCtx, conn, msg); err != nil {
						return
					}
				case <-s.Done():
					// covers a Join queued after the loop already stopped
					conn.Close(websocket.StatusTryAgainLater, "session closed")
					return
				case <-writeCtx.Done():
					return
				}
			}
		}()

		// Reader loop
		for {
			ctx, cancel := context.WithTimeout(req.Context(), readTimeout)
			_, data, err := conn.Read(ctx)
			cancel()
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("websocket read ended", zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeError(req.Context(), conn, "bad json")
				continue
			}
			if err := cm.Validate(); err != nil {
				writeError(req.Context(), conn, err.Error())
				continue
			}

			reply := make(chan error, 1)
			if !s.Send(req.Context(), session.FromClient{Cmd: cm.Command(), Reply: reply}) {
				return
			}
			select {
			case err := <-reply:
				if err != nil {
					writeError(req.Context(), conn, err.Error())
				}
			case <-s.Done():
				return
			case <-req.Context().Done():
				return
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, payload)
}

func writeError(ctx context.Context, conn *websocket.Conn, text string) {
	if err := write(ctx, conn, types.ServerMessage{Type: "Error", Error: text}); err != nil && !errors.Is(err, context.Canceled) {
		logger.FromContext(ctx).Debug("error frame not delivered", zap.Error(err))
	}
}
