// Package sse provides a minimal, purpose-built SSE (Server-Sent Events)
// reader for chat-completion streams. It parses the "data:" lines sent by
// an OpenAI-compatible endpoint and can optionally forward the raw bytes
// verbatim to a second writer in a tee pipe fashion, which the relay uses
// to pass a stream through to its client.
//
// This package intentionally does NOT provide SSE writer or server
// capabilities.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

// DoneSentinel is the data payload that marks the normal end of a
// chat-completion stream.
const DoneSentinel = "[DONE]"

// Event represents a single "data:" line from the upstream byte stream.
//
// Completion endpoints emit one JSON object per data line and do not
// always separate them with blank lines, so every data line is surfaced
// as its own event instead of being joined with its neighbours.
type Event struct {
	// Type is the SSE event type from the most recent "event:" field.
	// An empty string means the default "message" type per the SSE spec.
	Type string

	// Data is the value of the "data:" line with the optional single
	// leading space removed.
	Data string

	// ID is the last event ID from the "id:" field, if present.
	ID string
}

// IsDone reports whether the event is the end-of-stream sentinel.
func (e *Event) IsDone() bool {
	return e != nil && e.Data == DoneSentinel
}
