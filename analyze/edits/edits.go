// Package edits defines the structured edit contract between analysis
// findings and step-list mutations.
//
// Downstream collaborators turn report findings into candidate list
// changes, often via a generative model. Rather than regex-parsing
// free-form prose like "Add 'X' after step 3", the contract is a tagged
// variant over the five mutation kinds, parsed from schema-shaped JSON and
// validated against the list before application. The executor never
// depends on string pattern matching of model output.
package edits

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/dshills/flowaudit/analyze"
)

// Kind tags an edit operation variant.
type Kind string

const (
	Add    Kind = "add"    // insert a new step at Position
	Remove Kind = "remove" // delete the step at Position
	Move   Kind = "move"   // move the step at From to To
	Edit   Kind = "edit"   // replace the text of the step at Position
	Merge  Kind = "merge"  // collapse the steps at Targets into one step with Text
)

// Op is one tagged edit operation. Which fields are meaningful depends on
// Kind; Validate enforces the shape.
//
// Positions are zero-based indexes into the step list. For Add, Position
// may equal the list length (append).
type Op struct {
	Kind     Kind   `json:"op"`
	Position int    `json:"position,omitempty"`
	From     int    `json:"from,omitempty"`
	To       int    `json:"to,omitempty"`
	Text     string `json:"text,omitempty"`
	Targets  []int  `json:"targets,omitempty"`
}

// ParseOps extracts a list of edit operations from raw model output.
//
// Expected shape:
//
//	{"ops": [
//	  {"op": "add", "position": 2, "text": "Verify the entered data"},
//	  {"op": "move", "from": 4, "to": 1},
//	  {"op": "merge", "targets": [0, 1], "text": "Receive and log the request"}
//	]}
//
// A bare JSON array of operations is also accepted. Markdown fences and
// surrounding prose are tolerated; anything without a parseable operation
// list is an error.
func ParseOps(raw string) ([]Op, error) {
	body, ok := extractJSON(raw)
	if !ok {
		return nil, fmt.Errorf("edit response contains no JSON")
	}

	list := gjson.Get(body, "ops")
	if !list.Exists() && gjson.Parse(body).IsArray() {
		list = gjson.Parse(body)
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("edit response has no operation list")
	}

	var ops []Op
	for _, item := range list.Array() {
		op := Op{
			Kind:     Kind(item.Get("op").String()),
			Position: int(item.Get("position").Int()),
			From:     int(item.Get("from").Int()),
			To:       int(item.Get("to").Int()),
			Text:     strings.TrimSpace(item.Get("text").String()),
		}
		for _, t := range item.Get("targets").Array() {
			op.Targets = append(op.Targets, int(t.Int()))
		}
		ops = append(ops, op)
	}
	if len(ops) == 0 {
		return nil, fmt.Errorf("edit response has no operations")
	}
	return ops, nil
}

// Validate checks the operation's shape against a list of n steps.
func (o Op) Validate(n int) error {
	switch o.Kind {
	case Add:
		if o.Text == "" {
			return fmt.Errorf("add requires text")
		}
		if o.Position < 0 || o.Position > n {
			return fmt.Errorf("add position %d out of range [0,%d]", o.Position, n)
		}
	case Remove:
		if o.Position < 0 || o.Position >= n {
			return fmt.Errorf("remove position %d out of range [0,%d)", o.Position, n)
		}
	case Move:
		if o.From < 0 || o.From >= n {
			return fmt.Errorf("move source %d out of range [0,%d)", o.From, n)
		}
		if o.To < 0 || o.To >= n {
			return fmt.Errorf("move destination %d out of range [0,%d)", o.To, n)
		}
	case Edit:
		if o.Text == "" {
			return fmt.Errorf("edit requires text")
		}
		if o.Position < 0 || o.Position >= n {
			return fmt.Errorf("edit position %d out of range [0,%d)", o.Position, n)
		}
	case Merge:
		if o.Text == "" {
			return fmt.Errorf("merge requires text")
		}
		if len(o.Targets) < 2 {
			return fmt.Errorf("merge requires at least 2 targets")
		}
		seen := make(map[int]struct{}, len(o.Targets))
		for _, t := range o.Targets {
			if t < 0 || t >= n {
				return fmt.Errorf("merge target %d out of range [0,%d)", t, n)
			}
			if _, dup := seen[t]; dup {
				return fmt.Errorf("merge target %d repeated", t)
			}
			seen[t] = struct{}{}
		}
	default:
		return fmt.Errorf("unknown edit kind %q", o.Kind)
	}
	return nil
}

// Apply runs the operations in order against the step list and returns a
// new list with renumbered ordinals. The input list is never mutated.
//
// Each operation is validated against the list as it stands when that
// operation applies, so a sequence may add a step and then move it.
func Apply(steps []analyze.WorkflowStep, ops []Op) ([]analyze.WorkflowStep, error) {
	out := make([]analyze.WorkflowStep, len(steps))
	copy(out, steps)

	for i, op := range ops {
		if err := op.Validate(len(out)); err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}

		switch op.Kind {
		case Add:
			step := analyze.WorkflowStep{Text: op.Text, Kind: analyze.StepProcess}
			out = append(out[:op.Position], append([]analyze.WorkflowStep{step}, out[op.Position:]...)...)
		case Remove:
			out = append(out[:op.Position], out[op.Position+1:]...)
		case Move:
			step := out[op.From]
			out = append(out[:op.From], out[op.From+1:]...)
			out = append(out[:op.To], append([]analyze.WorkflowStep{step}, out[op.To:]...)...)
		case Edit:
			out[op.Position].Text = op.Text
		case Merge:
			merged := analyze.WorkflowStep{Text: op.Text, Kind: analyze.StepProcess, ID: out[op.Targets[0]].ID}
			drop := make(map[int]struct{}, len(op.Targets))
			for _, t := range op.Targets {
				drop[t] = struct{}{}
			}
			first := op.Targets[0]
			next := make([]analyze.WorkflowStep, 0, len(out)-len(op.Targets)+1)
			for idx, step := range out {
				if idx == first {
					next = append(next, merged)
					continue
				}
				if _, gone := drop[idx]; gone {
					continue
				}
				next = append(next, step)
			}
			out = next
		}
	}

	for i := range out {
		out[i].Ordinal = i + 1
		if out[i].ID == "" {
			out[i].ID = fmt.Sprintf("step-%d", i+1)
		}
	}
	return out, nil
}

// extractJSON locates the first JSON value in raw output, stripping
// markdown fences and surrounding prose.
func extractJSON(raw string) (string, bool) {
	objStart := strings.IndexByte(raw, '{')
	arrStart := strings.IndexByte(raw, '[')
	start := objStart
	end := strings.LastIndexByte(raw, '}')
	if objStart < 0 || (arrStart >= 0 && arrStart < objStart) {
		start = arrStart
		end = strings.LastIndexByte(raw, ']')
	}
	if start < 0 || end <= start {
		return "", false
	}
	body := raw[start : end+1]
	if !gjson.Valid(body) {
		return "", false
	}
	return body, true
}
