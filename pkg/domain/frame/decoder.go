// Package frame decodes blank-line delimited event frames ("event:" and
// "data:" blocks) from a byte stream whose chunk boundaries are arbitrary.
package frame

import (
	"bytes"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"
)

// Frame is one complete event block.
type Frame struct {
	Event string
	Data  string
	ID    string
	HasID bool
	// Retry is the reconnection delay requested by the server, zero if absent.
	Retry time.Duration
}

// Name returns the event name, or def when the frame carries none.
func (f Frame) Name(def string) string {
	if f.Event == "" {
		return def
	}
	return f.Event
}

var delimiter = []byte("\n\n")

// Decoder accumulates raw bytes and emits frames once their terminating
// blank line has arrived. Text is only decoded for complete frames, so a
// multi-byte character split across chunks is reassembled first.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	buf    []byte
	skipLF bool
}

// NewDecoder returns an empty decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends chunk and returns the frames it completed, in order.
func (d *Decoder) Feed(chunk []byte) []Frame {
	d.appendNormalized(chunk)

	var frames []Frame
	for {
		i := bytes.Index(d.buf, delimiter)
		if i < 0 {
			break
		}
		block := d.buf[:i]
		d.buf = d.buf[i+len(delimiter):]
		if f, ok := parseBlock(block); ok {
			frames = append(frames, f)
		}
	}
	return frames
}

// Pending returns the number of buffered bytes not yet part of a frame.
func (d *Decoder) Pending() int {
	return len(d.buf)
}

// Reset drops any partial frame.
func (d *Decoder) Reset() {
	d.buf = nil
	d.skipLF = false
}

// appendNormalized folds CRLF and lone CR line endings into LF. A CR is
// written as LF immediately; an LF directly after it is dropped, even when
// it arrives in the next chunk.
func (d *Decoder) appendNormalized(chunk []byte) {
	for _, b := range chunk {
		if d.skipLF {
			d.skipLF = false
			if b == '\n' {
				continue
			}
		}
		if b == '\r' {
			d.buf = append(d.buf, '\n')
			d.skipLF = true
			continue
		}
		d.buf = append(d.buf, b)
	}
}

func parseBlock(block []byte) (Frame, bool) {
	var (
		f       Frame
		data    []string
		hasData bool
		seen    bool
	)
	for _, line := range strings.Split(string(block), "\n") {
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		field, value, found := strings.Cut(line, ":")
		if found {
			value = strings.TrimPrefix(value, " ")
		}
		switch field {
		case "event":
			f.Event = value
			seen = true
		case "data":
			data = append(data, value)
			hasData = true
		case "id":
			if !strings.ContainsRune(value, 0) {
				f.ID = value
				f.HasID = true
				seen = true
			}
		case "retry":
			if ms, err := strconv.Atoi(value); err == nil && ms >= 0 {
				f.Retry = time.Duration(ms) * time.Millisecond
				seen = true
			}
		}
	}
	if hasData {
		f.Data = strings.Join(data, "\n")
	}
	return f, hasData || seen
}

// ReadAll reads r until EOF or until fn returns false, feeding every chunk
// through a fresh decoder. A trailing partial frame is discarded. It returns
// nil on EOF or early stop.
func ReadAll(r io.Reader, fn func(Frame) bool) error {
	d := NewDecoder()
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			for _, f := range d.Feed(buf[:n]) {
				if !fn(f) {
					return nil
				}
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
