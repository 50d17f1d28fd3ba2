package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	"github.com/oskarlindgren/pendla/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to feeds.
type wsMessage struct {
	Action  string `json:"action"`  // "subscribe" | "unsubscribe"
	Channel string `json:"channel"` // "delays" | "alerts" | "cases" | "broadcast"
}

// wsSubject maps a channel name to the NATS subject scoped to one user.
// Per-user subjects keep one client from seeing another's notifications.
func wsSubject(channel, userID string) string {
	switch channel {
	case "delays":
		return "commute.delay." + userID
	case "alerts":
		return "commute.alerts." + userID
	case "cases":
		return "commute.case.>" // filtered below by user_id in the payload
	case "broadcast":
		return "commute.updates.broadcast"
	default:
		return ""
	}
}

// WebSocketHandler relays real-time NATS events to connected clients. The
// user ID comes from the auth middleware; only events for that user (or
// broadcasts) are forwarded.
// Clients send JSON: {"action":"subscribe","channel":"delays"}
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		userID, _ := c.Locals(userIDLocal).(string)
		if userID == "" {
			_ = c.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unauthenticated"))
			return
		}

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()
		slog.Debug("ws client connected", "user_id", userID, "remote", c.RemoteAddr().String())

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription) // subject -> subscription

		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		// relay forwards a NATS message, dropping case events that belong
		// to other users (the case stream has no per-user subject).
		relay := func(msg *nats.Msg) {
			var envelope struct {
				UserID string `json:"user_id"`
			}
			if err := json.Unmarshal(msg.Data, &envelope); err == nil &&
				envelope.UserID != "" && envelope.UserID != userID {
				return
			}
			_ = writeJSON(json.RawMessage(msg.Data))
		}

		// Delay events are on by default
		defaultSubject := wsSubject("delays", userID)
		sub, err := nc.Subscribe(defaultSubject, relay)
		if err != nil {
			slog.Warn("ws default subscribe failed", "error", err)
			return
		}
		subs[defaultSubject] = sub

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			subject := wsSubject(m.Channel, userID)
			if subject == "" {
				_ = writeJSON(map[string]string{"error": "unknown channel: " + m.Channel})
				continue
			}

			switch m.Action {
			case "subscribe":
				if _, exists := subs[subject]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "channel": m.Channel})
					continue
				}
				s, err := nc.Subscribe(subject, relay)
				if err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				subs[subject] = s
				_ = writeJSON(map[string]string{"status": "subscribed", "channel": m.Channel})

			case "unsubscribe":
				if s, exists := subs[subject]; exists {
					_ = s.Unsubscribe()
					delete(subs, subject)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "channel": m.Channel})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + m.Channel})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		// Cleanup
		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		slog.Debug("ws client disconnected", "user_id", userID)
	}
}
