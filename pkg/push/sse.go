package push

import (
	"context"
	"fmt"
	"mime"
	"net/http"

	"github.com/felixgeelhaar/hireline/pkg/domain/frame"
)

type sseTransport struct {
	client *http.Client
}

func (t *sseTransport) connect(ctx context.Context, c *conn) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return fmt.Errorf("build sse request: %w", err)
	}
	for k, vs := range c.header {
		req.Header[k] = vs
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if c.lastEventID != "" {
		req.Header.Set("Last-Event-ID", c.lastEventID)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("sse connect: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close on read body

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sse connect: status %d", resp.StatusCode)
	}
	if mt, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); mt != "text/event-stream" {
		return fmt.Errorf("sse connect: unexpected content type %q", mt)
	}
	c.opened()

	err = frame.ReadAll(resp.Body, func(f frame.Frame) bool {
		if f.Retry > 0 {
			c.retry(f.Retry)
		}
		if f.Data == "" {
			return true
		}
		c.frame(f.Name(KindMessage), f.ID, []byte(f.Data))
		return true
	})
	if err != nil {
		return fmt.Errorf("sse read: %w", err)
	}
	return fmt.Errorf("sse stream ended")
}
