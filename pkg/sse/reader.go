package sse

import (
	"bufio"
	"io"
	"strings"
)

const (
	initialBufferSize = 64 * 1024
	maxLineSize       = 1024 * 1024
)

// Reader reads SSE events line by line from a source io.Reader. When a tee
// destination is configured, every raw line is also written verbatim to it
// before the line is parsed:
//
// ┌──────────────────┐
// │ source io.Reader │
// └──────────────────┘
// │
// ▼
// ┌──────────────────┐   ┌───────────────────────┐
// │  Reader.Next()   │──▶│ destination io.Writer │ (optional)
// └──────────────────┘   └───────────────────────┘
// │
// ▼
// ┌──────────────────┐
// │      Event       │
// └──────────────────┘
type Reader struct {
	scanner *bufio.Scanner
	dest    io.Writer

	// eventType and id carry the "event:" and "id:" fields until the next
	// blank line resets them.
	eventType string
	id        string
}

// Option configures a Reader.
type Option func(*Reader)

// WithTee writes every raw line read from the source to dest, newline
// included. dest typically backs an io.Pipe connected to a downstream
// HTTP response.
func WithTee(dest io.Writer) Option {
	return func(r *Reader) {
		r.dest = dest
	}
}

// NewReader returns a Reader that parses SSE events from src.
func NewReader(src io.Reader, opts ...Option) *Reader {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, initialBufferSize), maxLineSize)

	r := &Reader{scanner: scanner}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Next returns the event for the next "data:" line. It blocks until such
// a line is available. Next returns nil, nil when the source is exhausted.
func (r *Reader) Next() (*Event, error) {
	for r.scanner.Scan() {
		raw := r.scanner.Text()

		if r.dest != nil {
			// bufio.Scanner strips the newline from Scan() so it is
			// reinserted here.
			if _, err := io.WriteString(r.dest, raw+"\n"); err != nil {
				return nil, err
			}
		}

		raw = strings.TrimSuffix(raw, "\r")

		// A blank line ends the current event block.
		if raw == "" {
			r.eventType = ""
			r.id = ""
			continue
		}

		// Lines starting with ':' are comments (keep-alives).
		if strings.HasPrefix(raw, ":") {
			continue
		}

		field, value := parseLine(raw)
		switch field {
		case "data":
			return &Event{Type: r.eventType, Data: value, ID: r.id}, nil
		case "event":
			r.eventType = value
		case "id":
			r.id = value
		default:
			// "retry" and unknown fields are ignored per the SSE spec.
		}
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, nil
}

// parseLine splits a "field:value" line. The first space after the colon
// is optional and stripped if present. A line with no colon is a field
// name with an empty value.
func parseLine(line string) (string, string) {
	field, value, ok := strings.Cut(line, ":")
	if !ok {
		return line, ""
	}
	return field, strings.TrimPrefix(value, " ")
}
