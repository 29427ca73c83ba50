package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Invalidation is a server notice that the listed list queries are stale.
type Invalidation struct {
	Action string   `json:"action"`
	Keys   []string `json:"keys"`
}

type streamMessage struct {
	Stream string          `json:"stream"`
	Event  string          `json:"event"`
	Data   json.RawMessage `json:"data"`
}

// WatchURL returns the websocket URL of the invalidation stream.
func (c *Client) WatchURL() (string, error) {
	u, err := url.Parse(c.BaseURL())
	if err != nil {
		return "", fmt.Errorf("client: parse base url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	q := url.Values{}
	q.Set("streams", "invalidations")
	q.Set("token", c.Token())
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Watch subscribes to invalidation events and calls fn for each one until
// ctx is cancelled or the connection drops.
func (c *Client) Watch(ctx context.Context, fn func(Invalidation)) error {
	target, err := c.WatchURL()
	if err != nil {
		return err
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		return &APIError{StatusCode: status, Code: CodeTransport, Message: err.Error()}
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-done:
			return
		case <-ctx.Done():
		}
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	}()

	for {
		var msg streamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return &APIError{Code: CodeTransport, Message: err.Error()}
		}
		if msg.Event != "invalidate" {
			continue
		}
		var inv Invalidation
		if err := json.Unmarshal(msg.Data, &inv); err != nil {
			c.log.Warn("malformed invalidation", zap.Error(err))
			continue
		}
		fn(inv)
	}
}
