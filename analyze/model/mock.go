package model

import (
	"context"
	"sync"
)

// MockReasoner is a test implementation of Reasoner.
//
// Use MockReasoner in tests to verify analyzer behavior without making
// actual LLM API calls. It provides:
//   - Configurable judgment sequences
//   - Call history tracking
//   - Error injection
//   - Thread-safe operation
//
// Example usage:
//
//	mock := &model.MockReasoner{
//	    DuplicateJudgments: []model.DuplicateJudgment{
//	        {AreDuplicates: true, Similarity: 0.95, Reasoning: "same action"},
//	    },
//	}
//	j, err := mock.JudgeDuplicates(ctx, "a", "b")
//
// Example with error injection:
//
//	mock := &model.MockReasoner{Err: errors.New("api error")}
//	_, err := mock.JudgeDuplicates(ctx, "a", "b")
//	// Returns the configured error; callers must fall back.
type MockReasoner struct {
	// DuplicateJudgments is the sequence returned by JudgeDuplicates.
	// When exhausted, the last judgment repeats.
	DuplicateJudgments []DuplicateJudgment

	// OrderingJudgments is the sequence returned by SuggestOrder.
	// When exhausted, the last judgment repeats.
	OrderingJudgments []OrderingJudgment

	// Err, if set, is returned by both methods instead of a judgment.
	Err error

	// DuplicateCalls records every JudgeDuplicates invocation.
	DuplicateCalls []MockDuplicateCall

	// OrderingCalls records every SuggestOrder invocation.
	OrderingCalls [][]string

	mu       sync.Mutex
	dupIndex int
	ordIndex int
}

// MockDuplicateCall records a single JudgeDuplicates invocation.
type MockDuplicateCall struct {
	StepA string
	StepB string
}

// JudgeDuplicates implements the Reasoner interface.
func (m *MockReasoner) JudgeDuplicates(ctx context.Context, stepA, stepB string) (DuplicateJudgment, error) {
	if ctx.Err() != nil {
		return DuplicateJudgment{}, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.DuplicateCalls = append(m.DuplicateCalls, MockDuplicateCall{StepA: stepA, StepB: stepB})

	if m.Err != nil {
		return DuplicateJudgment{}, m.Err
	}
	if len(m.DuplicateJudgments) == 0 {
		return DuplicateJudgment{}, nil
	}

	idx := m.dupIndex
	if idx >= len(m.DuplicateJudgments) {
		idx = len(m.DuplicateJudgments) - 1
	} else {
		m.dupIndex++
	}
	return m.DuplicateJudgments[idx], nil
}

// SuggestOrder implements the Reasoner interface.
func (m *MockReasoner) SuggestOrder(ctx context.Context, steps []string) (OrderingJudgment, error) {
	if ctx.Err() != nil {
		return OrderingJudgment{}, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	recorded := make([]string, len(steps))
	copy(recorded, steps)
	m.OrderingCalls = append(m.OrderingCalls, recorded)

	if m.Err != nil {
		return OrderingJudgment{}, m.Err
	}
	if len(m.OrderingJudgments) == 0 {
		return OrderingJudgment{}, nil
	}

	idx := m.ordIndex
	if idx >= len(m.OrderingJudgments) {
		idx = len(m.OrderingJudgments) - 1
	} else {
		m.ordIndex++
	}
	return m.OrderingJudgments[idx], nil
}

// Reset clears the call history and judgment indexes so the mock can be
// reused across test cases.
func (m *MockReasoner) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DuplicateCalls = nil
	m.OrderingCalls = nil
	m.dupIndex = 0
	m.ordIndex = 0
}

// CallCount returns the total number of reasoning calls recorded.
func (m *MockReasoner) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.DuplicateCalls) + len(m.OrderingCalls)
}
