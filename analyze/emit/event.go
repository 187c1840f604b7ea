package emit

// Event represents an observability event emitted during an analysis run.
//
// Events provide insight into engine behavior:
//   - Run start/complete
//   - Per-analyzer completion with findings counts
//   - External reasoning fallbacks
//   - Analyzer faults
//
// Events are emitted to an Emitter which can log to stdout/stderr, send to
// OpenTelemetry, or buffer for inspection in tests.
type Event struct {
	// RunID identifies the analysis run that emitted this event.
	RunID string

	// Analyzer identifies which analyzer emitted this event
	// ("duplicates", "efficiency", "risk", "ordering", "gaps").
	// Empty string for run-level events.
	Analyzer string

	// Msg is a short machine-matchable event name, e.g. "run_start",
	// "analyzer_done", "fallback", "run_error".
	Msg string

	// Meta contains additional structured data specific to this event.
	// Common keys:
	//   - "duration_ms": analyzer execution duration in milliseconds
	//   - "findings": number of findings the analyzer produced
	//   - "error": error details
	//   - "reason": fallback cause (timeout, transport, malformed)
	Meta map[string]interface{}
}
