package model

import (
	"errors"
	"strings"
	"testing"
)

func TestParseDuplicateJudgment(t *testing.T) {
	t.Run("strict JSON", func(t *testing.T) {
		raw := `{"areDuplicates": true, "similarity": 0.92, "reasoning": "same action"}`
		j, err := ParseDuplicateJudgment(raw)
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if !j.AreDuplicates || j.Similarity != 0.92 || j.Reasoning != "same action" {
			t.Errorf("judgment = %+v", j)
		}
	})

	t.Run("markdown fenced JSON", func(t *testing.T) {
		raw := "```json\n{\"areDuplicates\": false, \"similarity\": 0.2}\n```"
		j, err := ParseDuplicateJudgment(raw)
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if j.AreDuplicates || j.Similarity != 0.2 {
			t.Errorf("judgment = %+v", j)
		}
	})

	t.Run("JSON surrounded by prose", func(t *testing.T) {
		raw := `Sure! Here is my analysis: {"areDuplicates": true, "similarity": 0.8} Hope that helps.`
		j, err := ParseDuplicateJudgment(raw)
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if !j.AreDuplicates {
			t.Errorf("judgment = %+v", j)
		}
	})

	t.Run("similarity clamped to [0,1]", func(t *testing.T) {
		j, err := ParseDuplicateJudgment(`{"areDuplicates": true, "similarity": 3.5}`)
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if j.Similarity != 1 {
			t.Errorf("similarity = %v, want clamped to 1", j.Similarity)
		}
	})

	t.Run("missing verdict field is malformed", func(t *testing.T) {
		_, err := ParseDuplicateJudgment(`{"similarity": 0.9}`)
		if !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("err = %v, want ErrMalformedResponse", err)
		}
	})

	t.Run("no JSON at all is malformed", func(t *testing.T) {
		_, err := ParseDuplicateJudgment("I could not decide.")
		if !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("err = %v, want ErrMalformedResponse", err)
		}
	})

	t.Run("invalid JSON is malformed", func(t *testing.T) {
		_, err := ParseDuplicateJudgment(`{"areDuplicates": tru`)
		if !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("err = %v, want ErrMalformedResponse", err)
		}
	})
}

func TestParseOrderingJudgment(t *testing.T) {
	t.Run("reordering with steps", func(t *testing.T) {
		raw := `{"needsReordering": true, "suggestedSteps": ["b", "a"], "reasoning": "b first", "confidence": 0.8}`
		j, err := ParseOrderingJudgment(raw)
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if !j.NeedsReordering || len(j.SuggestedSteps) != 2 || j.SuggestedSteps[0] != "b" {
			t.Errorf("judgment = %+v", j)
		}
		if j.Confidence != 0.8 {
			t.Errorf("confidence = %v", j.Confidence)
		}
	})

	t.Run("no reordering needs no steps", func(t *testing.T) {
		j, err := ParseOrderingJudgment(`{"needsReordering": false}`)
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if j.NeedsReordering {
			t.Errorf("judgment = %+v", j)
		}
	})

	t.Run("reordering without steps is malformed", func(t *testing.T) {
		_, err := ParseOrderingJudgment(`{"needsReordering": true, "suggestedSteps": []}`)
		if !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("err = %v, want ErrMalformedResponse", err)
		}
	})

	t.Run("missing verdict field is malformed", func(t *testing.T) {
		_, err := ParseOrderingJudgment(`{"suggestedSteps": ["a"]}`)
		if !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("err = %v, want ErrMalformedResponse", err)
		}
	})
}

func TestDuplicatePrompt(t *testing.T) {
	system, user := DuplicatePrompt("Send the invoice", "Email the invoice")
	if !strings.Contains(system, "areDuplicates") {
		t.Errorf("system prompt missing schema: %q", system)
	}
	if !strings.Contains(user, "Send the invoice") || !strings.Contains(user, "Email the invoice") {
		t.Errorf("user prompt missing step texts: %q", user)
	}
}

func TestOrderingPrompt(t *testing.T) {
	system, user := OrderingPrompt([]string{"Wash hands", "Wipe"})
	if !strings.Contains(system, "needsReordering") {
		t.Errorf("system prompt missing schema: %q", system)
	}
	if !strings.Contains(user, "1. Wash hands") || !strings.Contains(user, "2. Wipe") {
		t.Errorf("user prompt missing numbered steps: %q", user)
	}
}
