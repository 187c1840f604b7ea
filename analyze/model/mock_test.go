package model

import (
	"context"
	"errors"
	"testing"
)

func TestMockReasonerSequences(t *testing.T) {
	ctx := context.Background()

	t.Run("judgments are returned in order and the last repeats", func(t *testing.T) {
		mock := &MockReasoner{
			DuplicateJudgments: []DuplicateJudgment{
				{AreDuplicates: true, Similarity: 0.9},
				{AreDuplicates: false, Similarity: 0.1},
			},
		}

		first, _ := mock.JudgeDuplicates(ctx, "a", "b")
		second, _ := mock.JudgeDuplicates(ctx, "c", "d")
		third, _ := mock.JudgeDuplicates(ctx, "e", "f")

		if !first.AreDuplicates || second.AreDuplicates || third.AreDuplicates {
			t.Errorf("sequence = %+v, %+v, %+v", first, second, third)
		}
		if third.Similarity != 0.1 {
			t.Errorf("exhausted sequence should repeat the last judgment, got %+v", third)
		}
	})

	t.Run("call history records arguments", func(t *testing.T) {
		mock := &MockReasoner{}
		mock.JudgeDuplicates(ctx, "step one", "step two")
		mock.SuggestOrder(ctx, []string{"a", "b"})

		if len(mock.DuplicateCalls) != 1 {
			t.Fatalf("DuplicateCalls = %d, want 1", len(mock.DuplicateCalls))
		}
		if mock.DuplicateCalls[0].StepA != "step one" || mock.DuplicateCalls[0].StepB != "step two" {
			t.Errorf("recorded call = %+v", mock.DuplicateCalls[0])
		}
		if len(mock.OrderingCalls) != 1 || len(mock.OrderingCalls[0]) != 2 {
			t.Errorf("OrderingCalls = %+v", mock.OrderingCalls)
		}
		if mock.CallCount() != 2 {
			t.Errorf("CallCount = %d, want 2", mock.CallCount())
		}
	})

	t.Run("error injection returns the error on every call", func(t *testing.T) {
		boom := errors.New("api down")
		mock := &MockReasoner{Err: boom}

		if _, err := mock.JudgeDuplicates(ctx, "a", "b"); !errors.Is(err, boom) {
			t.Errorf("err = %v, want injected error", err)
		}
		if _, err := mock.SuggestOrder(ctx, []string{"a"}); !errors.Is(err, boom) {
			t.Errorf("err = %v, want injected error", err)
		}
	})

	t.Run("canceled context short-circuits", func(t *testing.T) {
		mock := &MockReasoner{}
		canceled, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := mock.JudgeDuplicates(canceled, "a", "b"); !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
		if len(mock.DuplicateCalls) != 0 {
			t.Error("canceled call should not be recorded")
		}
	})

	t.Run("reset clears history and sequence positions", func(t *testing.T) {
		mock := &MockReasoner{
			DuplicateJudgments: []DuplicateJudgment{
				{AreDuplicates: true},
				{AreDuplicates: false},
			},
		}
		mock.JudgeDuplicates(ctx, "a", "b")
		mock.Reset()

		if mock.CallCount() != 0 {
			t.Errorf("CallCount after Reset = %d", mock.CallCount())
		}
		j, _ := mock.JudgeDuplicates(ctx, "a", "b")
		if !j.AreDuplicates {
			t.Error("Reset should rewind to the first judgment")
		}
	})

	t.Run("recorded ordering call is a copy", func(t *testing.T) {
		mock := &MockReasoner{}
		steps := []string{"a", "b"}
		mock.SuggestOrder(ctx, steps)
		steps[0] = "mutated"

		if mock.OrderingCalls[0][0] != "a" {
			t.Error("caller mutation reached the recorded call")
		}
	})
}
