package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	feedWriteWait    = 10 * time.Second
	feedPongWait     = 120 * time.Second
	feedPingInterval = 50 * time.Second
)

// feedEvent is the wire shape pushed to live-feed clients. Data carries
// the same projection as the recent list, so the birth date never
// leaves the server.
type feedEvent struct {
	Type string      `json:"type"`
	Data recentEntry `json:"data"`
}

// handleFeedWS upgrades the connection and streams accepted submissions
// until the client goes away. The socket is server-push only; inbound
// frames are drained solely to process close and pong control messages.
func (s *Server) handleFeedWS(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		respondErrors(w, http.StatusServiceUnavailable, "live feed is not enabled")
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the handshake error.
		return
	}
	defer conn.Close()

	events, cancelSub := s.hub.Subscribe()
	defer func() {
		cancelSub()
		s.metrics.FeedSubscribers.Set(float64(s.hub.Count()))
	}()
	s.metrics.FeedSubscribers.Set(float64(s.hub.Count()))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(feedPongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(feedPongWait))
		return nil
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pings := time.NewTicker(feedPingInterval)
	defer pings.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case sub, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteJSON(feedEvent{Type: "submission_created", Data: toRecentEntry(sub)}); err != nil {
				return
			}
		case <-pings.C:
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
