package emit

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLogEmitterText(t *testing.T) {
	var buf bytes.Buffer
	emitter := NewLogEmitter(&buf, false)

	emitter.Emit(Event{
		RunID:    "run-001",
		Analyzer: "risk",
		Msg:      "analyzer_done",
		Meta:     map[string]interface{}{"findings": 2},
	})

	out := buf.String()
	for _, want := range []string{"[analyzer_done]", "runID=run-001", "analyzer=risk", `"findings":2`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestLogEmitterTextWithoutMeta(t *testing.T) {
	var buf bytes.Buffer
	emitter := NewLogEmitter(&buf, false)

	emitter.Emit(Event{RunID: "run-002", Msg: "run_start"})

	out := buf.String()
	if strings.Contains(out, "meta=") {
		t.Errorf("output %q should omit empty meta", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("output should end with a newline")
	}
}

func TestLogEmitterJSON(t *testing.T) {
	var buf bytes.Buffer
	emitter := NewLogEmitter(&buf, true)

	emitter.Emit(Event{
		RunID:    "run-003",
		Analyzer: "gaps",
		Msg:      "analyzer_done",
		Meta:     map[string]interface{}{"findings": 1},
	})

	var decoded struct {
		RunID    string                 `json:"runID"`
		Analyzer string                 `json:"analyzer"`
		Msg      string                 `json:"msg"`
		Meta     map[string]interface{} `json:"meta"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v (%q)", err, buf.String())
	}
	if decoded.RunID != "run-003" || decoded.Analyzer != "gaps" || decoded.Msg != "analyzer_done" {
		t.Errorf("decoded = %+v", decoded)
	}
	if decoded.Meta["findings"] != float64(1) {
		t.Errorf("meta findings = %v", decoded.Meta["findings"])
	}
}

func TestLogEmitterJSONLines(t *testing.T) {
	var buf bytes.Buffer
	emitter := NewLogEmitter(&buf, true)

	emitter.Emit(Event{RunID: "a", Msg: "run_start"})
	emitter.Emit(Event{RunID: "a", Msg: "run_complete"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 JSONL lines, got %d", len(lines))
	}
	for i, line := range lines {
		if !json.Valid([]byte(line)) {
			t.Errorf("line %d is not valid JSON: %q", i, line)
		}
	}
}
