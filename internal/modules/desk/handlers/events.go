package handlers

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const eventWriteWait = 10 * time.Second

// HandleEvents handles GET /api/sessions/{id}/events by upgrading to a
// websocket and streaming the session's events as JSON messages until the
// client leaves or the session is closed.
func (h *Handler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	d, ok := h.session(w, r)
	if !ok {
		return
	}

	conn, err := websocket.Accept(w, r, h.acceptOptions())
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "")

	events, cancel := d.Events().Subscribe()
	defer cancel()

	// The client never sends anything; CloseRead handles control frames and
	// cancels ctx once the client goes away.
	ctx := conn.CloseRead(r.Context())
	log := h.log.With().Str("session", chiID(r)).Logger()
	log.Debug().Msg("Event stream opened")

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("Event stream client gone")
			return
		case event, open := <-events:
			if !open {
				conn.Close(websocket.StatusNormalClosure, "session closed")
				return
			}
			writeCtx, writeCancel := context.WithTimeout(ctx, eventWriteWait)
			err := wsjson.Write(writeCtx, conn, event)
			writeCancel()
			if err != nil {
				log.Debug().Err(err).Msg("Event stream write failed")
				return
			}
		}
	}
}

// acceptOptions turns the configured CORS origins into websocket origin
// patterns, which match on host only.
func (h *Handler) acceptOptions() *websocket.AcceptOptions {
	opts := &websocket.AcceptOptions{}
	for _, o := range h.origins {
		if o == "*" {
			opts.InsecureSkipVerify = true
			return opts
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			opts.OriginPatterns = append(opts.OriginPatterns, u.Host)
			continue
		}
		opts.OriginPatterns = append(opts.OriginPatterns, o)
	}
	if len(h.origins) == 0 {
		opts.InsecureSkipVerify = true
	}
	return opts
}
