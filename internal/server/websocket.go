package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
)

// writeWait bounds a single frame write to a peer.
const writeWait = 10 * time.Second

// handleWebSocket upgrades the connection and forwards live messages
// to the peer until it goes away. Each connection gets its own
// subscription; serialization happens here, per subscriber, so one bad
// message delivery never tears down the channel for anyone else.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Subscribe before the handshake response goes out, so a message
	// emitted the instant the client sees the upgrade is not lost.
	sub := s.broadcaster.Subscribe()
	defer sub.Close()

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn(r.Context(), err, "websocket upgrade failed")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Read pump. Clients have nothing to say to us, so inbound data
	// frames are drained and discarded; reading also answers pings.
	// A read error means the peer closed or went away, which cancels
	// the write loop below.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return

		case msg, ok := <-sub.C():
			if !ok {
				conn.Close(websocket.StatusGoingAway, "server shutting down")
				return
			}

			payload, err := json.Marshal(msg)
			if err != nil {
				// Skip this delivery; the subscription stays alive.
				s.logger.Error(ctx, err, "failed to serialize live message")
				continue
			}

			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err = conn.Write(writeCtx, websocket.MessageText, payload)
			cancel()
			if err != nil {
				if websocket.CloseStatus(err) != websocket.StatusNormalClosure &&
					websocket.CloseStatus(err) != websocket.StatusGoingAway {
					s.logger.Debug(ctx, "websocket write failed", "error", err.Error())
				}
				return
			}
		}
	}
}
