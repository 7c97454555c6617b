// Package llmtest provides a scripted llm.Completer for tests.
package llmtest

import (
	"context"
	"sync"

	"calorina/internal/llm"
	"calorina/internal/shared"
)

// MockCompleter is a thread-safe llm.Completer that replays canned replies
// and records every request it receives.
//
//	mock := &llmtest.MockCompleter{Responses: []string{"Hi!", "PLAN_READY"}}
//	mock := &llmtest.MockCompleter{Err: errors.New("connection failed")}
type MockCompleter struct {
	mu        sync.Mutex
	Responses []string // returned in sequence; the last one repeats
	Err       error    // takes precedence over Responses
	// Hook, when set, replaces the canned behaviour entirely.
	Hook func(ctx context.Context, req llm.Request) (llm.ContentResponse, error)

	requests []llm.Request
	index    int
}

// Complete implements llm.Completer.
func (m *MockCompleter) Complete(ctx context.Context, req llm.Request) (llm.ContentResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	hook := m.Hook
	m.mu.Unlock()

	if hook != nil {
		return hook(ctx, req)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return llm.ContentResponse{}, m.Err
	}

	var content string
	if len(m.Responses) > 0 {
		i := m.index
		if i >= len(m.Responses) {
			i = len(m.Responses) - 1
		}
		content = m.Responses[i]
		m.index++
	}
	return llm.ContentResponse{
		Content: content,
		Usage:   shared.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15, Model: "test-model"},
	}, nil
}

// Requests returns a copy of every request received so far.
func (m *MockCompleter) Requests() []llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]llm.Request(nil), m.requests...)
}

// LastRequest returns the most recent request. It panics when none was made.
func (m *MockCompleter) LastRequest() llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[len(m.requests)-1]
}

// CallCount returns the number of times Complete was called.
func (m *MockCompleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Reset clears recorded requests and rewinds the responses.
func (m *MockCompleter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
	m.index = 0
}
