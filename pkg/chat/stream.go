// Package chat streams assistant replies from the orchestrator's chat
// endpoint into a transcript.
package chat

import (
	"context"
	"io"

	"github.com/felixgeelhaar/hireline/pkg/domain/frame"
)

// Default frame names of the chat stream.
const (
	DefaultContentEvent  = "content"
	DefaultTerminalEvent = "done"
)

// Sink receives the output of one streamed reply. Fail is called at most
// once and replaces anything appended before it.
type Sink interface {
	Append(delta string)
	Fail(message string)
}

// StreamOptions names the content and terminal frames.
type StreamOptions struct {
	ContentEvent  string
	TerminalEvent string
	Fallback      string
}

func (o StreamOptions) withDefaults() StreamOptions {
	if o.ContentEvent == "" {
		o.ContentEvent = DefaultContentEvent
	}
	if o.TerminalEvent == "" {
		o.TerminalEvent = DefaultTerminalEvent
	}
	if o.Fallback == "" {
		o.Fallback = FallbackMessage
	}
	return o
}

// StreamResult summarizes a finished stream.
type StreamResult struct {
	Frames   int
	Content  int
	Terminal bool
}

// Stream reads frames from body until the terminal frame, EOF or an error,
// appending content frames to sink. body is always closed before Stream
// returns, and cancelling ctx closes it early. A read error, or EOF before the
// terminal frame, sends exactly one fallback to sink and is returned; the
// latter as io.ErrUnexpectedEOF.
func Stream(ctx context.Context, body io.ReadCloser, sink Sink, opts StreamOptions) (StreamResult, error) {
	opts = opts.withDefaults()
	stop := context.AfterFunc(ctx, func() { _ = body.Close() })
	defer func() {
		stop()
		_ = body.Close()
	}()

	var res StreamResult
	err := frame.ReadAll(body, func(f frame.Frame) bool {
		res.Frames++
		switch f.Name("message") {
		case opts.TerminalEvent:
			res.Terminal = true
			return false
		case opts.ContentEvent:
			res.Content++
			sink.Append(f.Data)
		}
		return true
	})
	if err == nil && !res.Terminal {
		err = io.ErrUnexpectedEOF
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		sink.Fail(opts.Fallback)
		return res, err
	}
	return res, nil
}
