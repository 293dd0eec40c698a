// Package testutils holds fakes and shared specs for package tests.
package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/papercomputeco/notechat/pkg/completion"
	"github.com/papercomputeco/notechat/pkg/llm"
)

// MockCompleter is a test completer that records calls and replays
// configurable checkpoints.
type MockCompleter struct {
	mu sync.Mutex

	// Calls accumulates the turns passed to every Complete call.
	Calls [][]llm.Turn

	// Configs accumulates the request configs of every call.
	Configs []completion.RequestConfig

	// Checkpoints are delivered to onDelta in order. The last one is
	// returned as the final text.
	Checkpoints []string

	// Err, when set, is returned after the checkpoints are delivered.
	Err error

	// Block, when set, is waited on (or ctx) before anything is delivered.
	Block chan struct{}
}

// NewMockCompleter returns a completer answering with checkpoints.
func NewMockCompleter(checkpoints ...string) *MockCompleter {
	return &MockCompleter{Checkpoints: checkpoints}
}

func (m *MockCompleter) Complete(ctx context.Context, cfg completion.RequestConfig, turns []llm.Turn, onDelta func(string)) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, append([]llm.Turn(nil), turns...))
	m.Configs = append(m.Configs, cfg)
	checkpoints := m.Checkpoints
	err := m.Err
	block := m.Block
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	final := ""
	for _, c := range checkpoints {
		if onDelta != nil {
			onDelta(c)
		}
		final = c
	}
	if err != nil {
		return "", err
	}
	return final, nil
}

// CallCount returns the number of Complete calls so far.
func (m *MockCompleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// ErrInjected is returned by FailingDriver.
var ErrInjected = errors.New("injected storage failure")
