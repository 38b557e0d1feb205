package generator

import (
	"context"
	"sync"
)

// Mock implements Generator with a scripted queue of responses and errors,
// for testing the executor and harness without a live backend.
type Mock struct {
	mu       sync.Mutex
	steps    []mockStep
	index    int
	fallback string
	calls    int
}

type mockStep struct {
	response string
	err      error
}

// NewMock creates a mock generator. Until the script is populated, every
// call returns the fallback response.
func NewMock() *Mock {
	return &Mock{
		fallback: "This is a mock response",
	}
}

// SetFallback configures the response returned once the script is exhausted.
func (m *Mock) SetFallback(response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = response
}

// Enqueue appends a successful response to the script.
func (m *Mock) Enqueue(response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, mockStep{response: response})
}

// EnqueueError appends a failing call to the script.
func (m *Mock) EnqueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, mockStep{err: err})
}

// EnqueueErrors appends n identical failing calls to the script.
func (m *Mock) EnqueueErrors(n int, err error) {
	for i := 0; i < n; i++ {
		m.EnqueueError(err)
	}
}

// Calls returns how many times Generate has been invoked.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *Mock) Name() string {
	return "mock"
}

func (m *Mock) Generate(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", NewError(KindTimeout, "context done before generation", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.index < len(m.steps) {
		step := m.steps[m.index]
		m.index++
		if step.err != nil {
			return "", step.err
		}
		return step.response, nil
	}

	return m.fallback, nil
}
