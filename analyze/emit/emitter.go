// Package emit provides event emission and observability for analysis runs.
package emit

// Emitter receives and processes observability events from the analysis
// engine.
//
// Emitters enable pluggable observability backends:
//   - Logging: stdout, files, syslog
//   - Distributed tracing: OpenTelemetry
//   - In-memory capture for tests and dashboards
//
// Implementations should be:
//   - Non-blocking: avoid slowing down analysis runs
//   - Thread-safe: analyzers run concurrently and may emit concurrently
//   - Resilient: handle backend failures without crashing the run
type Emitter interface {
	// Emit sends an observability event to the configured backend.
	//
	// Emit should not panic and should not block the analysis run.
	// Errors should be handled internally.
	Emit(event Event)
}
