package bridge

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pushchain/push-ota/internal/update"
)

const closeGrace = 1500 * time.Millisecond

// Subscribe opens the agent's event stream. The returned channel is
// closed when ctx is done or the connection ends. Frames that do not
// decode to an event are skipped.
func (c *Client) Subscribe(ctx context.Context) (<-chan update.UpdateEvent, error) {
	d := websocket.Dialer{
		HandshakeTimeout:  5 * time.Second,
		EnableCompression: false,
	}
	// nolint:bodyclose
	conn, _, err := d.DialContext(ctx, c.wsURL, c.header())
	if err != nil {
		return nil, err
	}
	c.log.Debugf("Subscribed to %s", c.wsURL)

	out := make(chan update.UpdateEvent, 16)
	done := make(chan struct{})

	// Unblock the read loop when the caller goes away.
	go func() {
		select {
		case <-ctx.Done():
			deadline := time.Now().Add(closeGrace)
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			_ = conn.Close()
		case <-done:
		}
	}()

	go func() {
		defer close(out)
		defer close(done)
		defer func() { _ = conn.Close() }()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					c.log.Warnf("Update event stream ended: %v", err)
				}
				return
			}
			ev, ok := parseEvent(msg)
			if !ok {
				c.log.Debugf("Skipping malformed update event: %s", msg)
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func parseEvent(b []byte) (update.UpdateEvent, bool) {
	var ev update.UpdateEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		return update.UpdateEvent{}, false
	}
	if ev.Type == "" {
		return update.UpdateEvent{}, false
	}
	return ev, true
}
