package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

type wsTransport struct {
	dialer *websocket.Dialer
}

// wsEnvelope is the named-frame shape of a WebSocket message.
type wsEnvelope struct {
	Event *string         `json:"event"`
	ID    string          `json:"id,omitempty"`
	Data  json.RawMessage `json:"data"`
	Retry int             `json:"retry,omitempty"` // milliseconds
}

func (t *wsTransport) connect(ctx context.Context, c *conn) error {
	header := c.header.Clone()
	if c.lastEventID != "" {
		header.Set("Last-Event-ID", c.lastEventID)
	}
	ws, _, err := t.dialer.DialContext(ctx, c.url, header)
	if err != nil {
		return fmt.Errorf("ws connect: %w", err)
	}
	stop := context.AfterFunc(ctx, func() { _ = ws.Close() })
	defer func() {
		stop()
		_ = ws.Close()
	}()
	c.opened()

	for {
		mt, msg, err := ws.ReadMessage()
		if err != nil {
			return fmt.Errorf("ws read: %w", err)
		}
		if mt != websocket.TextMessage {
			continue
		}
		kind, id, data, retry := splitEnvelope(msg)
		if retry > 0 {
			c.retry(retry)
		}
		c.frame(kind, id, data)
	}
}

// splitEnvelope unwraps {"event": name, "data": ...}. Anything else is
// delivered whole as an unnamed message.
func splitEnvelope(msg []byte) (kind, id string, data []byte, retry time.Duration) {
	trimmed := bytes.TrimSpace(msg)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env wsEnvelope
		if err := json.Unmarshal(trimmed, &env); err == nil && env.Event != nil && env.Data != nil {
			kind = *env.Event
			if kind == "" {
				kind = KindMessage
			}
			return kind, env.ID, env.Data, time.Duration(env.Retry) * time.Millisecond
		}
	}
	return KindMessage, "", msg, 0
}
