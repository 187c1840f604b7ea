package analyze

import "errors"

// ErrNoSteps indicates an analysis was requested over an empty step list.
// The orchestrator never returns this to callers; it records the condition
// in the report's Error field instead. Individual analyzers use it when
// invoked directly.
var ErrNoSteps = errors.New("no steps to analyze")

// ErrNoReasoner indicates an operation that requires an external reasoning
// collaborator was invoked on an engine configured without one.
var ErrNoReasoner = errors.New("no reasoner configured")

// noStepsMessage is the Error field value for an empty-input report.
const noStepsMessage = "No steps to analyze"
