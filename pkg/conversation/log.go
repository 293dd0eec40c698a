package conversation

import (
	"sync"

	"github.com/papercomputeco/notechat/pkg/llm"
)

// Log is the ordered list of turns of one conversation. It is safe for
// concurrent use; readers get copies.
type Log struct {
	mu    sync.RWMutex
	turns []llm.Turn
}

// NewLog returns an empty Log.
func NewLog() *Log {
	return &Log{}
}

// Append adds t and returns its index.
func (l *Log) Append(t llm.Turn) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.turns = append(l.turns, t)
	return len(l.turns) - 1
}

// Turns returns a copy of every turn.
func (l *Log) Turns() []llm.Turn {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]llm.Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

// At returns the turn at i.
func (l *Log) At(i int) (llm.Turn, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if i < 0 || i >= len(l.turns) {
		return llm.Turn{}, false
	}
	return l.turns[i], true
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.turns)
}

// SetText replaces the text of the turn at i. Out of range indexes are
// ignored.
func (l *Log) SetText(i int, text string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i >= 0 && i < len(l.turns) {
		l.turns[i].Text = text
	}
}

// MarkFailed sets the text of the turn at i to msg and flags it failed.
func (l *Log) MarkFailed(i int, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i >= 0 && i < len(l.turns) {
		l.turns[i].Text = msg
		l.turns[i].Failed = true
	}
}

// Truncate keeps the first n turns.
func (l *Log) Truncate(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n < 0 {
		n = 0
	}
	if n < len(l.turns) {
		clear(l.turns[n:])
		l.turns = l.turns[:n]
	}
}

// Replace swaps in a copy of turns.
func (l *Log) Replace(turns []llm.Turn) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.turns = append([]llm.Turn(nil), turns...)
}

func (l *Log) Clear() {
	l.Replace(nil)
}

// LastUserIndex returns the index of the newest user turn, or -1.
func (l *Log) LastUserIndex() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for i := len(l.turns) - 1; i >= 0; i-- {
		if l.turns[i].Role == llm.RoleUser {
			return i
		}
	}
	return -1
}
