package emit

import "sync"

// BufferedEmitter implements Emitter by storing events in memory.
//
// This emitter captures all events and provides query capabilities for
// run-history inspection. Events are organized by runID.
//
// Features:
//   - Thread-safe concurrent access
//   - Query by runID with optional filtering
//   - Filter by analyzer or message
//   - Clear events by runID or all events
//
// Use cases:
//   - Testing and validation
//   - Development and debugging
//   - Feeding dashboards that render analysis activity
//
// Warning: all events are held in memory. Long-lived monitoring loops
// should Clear completed runs or use a LogEmitter instead.
type BufferedEmitter struct {
	mu     sync.RWMutex
	events map[string][]Event // runID -> events
}

// HistoryFilter specifies criteria for filtering run history.
//
// All fields are optional; set fields combine with AND logic.
type HistoryFilter struct {
	Analyzer string // filter by analyzer (empty = no filter)
	Msg      string // filter by message (empty = no filter)
}

// NewBufferedEmitter creates a new BufferedEmitter. Safe for concurrent use.
func NewBufferedEmitter() *BufferedEmitter {
	return &BufferedEmitter{
		events: make(map[string][]Event),
	}
}

// Emit stores an event in the buffer.
func (b *BufferedEmitter) Emit(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events[event.RunID] = append(b.events[event.RunID], event)
}

// GetHistory retrieves all events for a specific runID in emission order.
// Returns an empty slice when no events exist for the run.
//
// The returned slice is a copy; callers may retain or modify it freely.
func (b *BufferedEmitter) GetHistory(runID string) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	events := b.events[runID]
	result := make([]Event, len(events))
	copy(result, events)
	return result
}

// GetHistoryWithFilter retrieves events for a runID matching the filter.
// All filter conditions must match (AND logic). Returns an empty slice
// when nothing matches.
func (b *BufferedEmitter) GetHistoryWithFilter(runID string, filter HistoryFilter) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := []Event{}
	for _, event := range b.events[runID] {
		if filter.Analyzer != "" && event.Analyzer != filter.Analyzer {
			continue
		}
		if filter.Msg != "" && event.Msg != filter.Msg {
			continue
		}
		result = append(result, event)
	}
	return result
}

// Clear removes stored events.
//
// If runID is non-empty, clears only events for that run. If runID is
// empty, clears all stored events across all runs.
func (b *BufferedEmitter) Clear(runID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if runID == "" {
		b.events = make(map[string][]Event)
	} else {
		delete(b.events, runID)
	}
}
