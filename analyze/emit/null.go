package emit

// NullEmitter implements Emitter by discarding all events.
//
// Used as the default when no emitter is configured, so engine code never
// needs a nil check before emitting.
type NullEmitter struct{}

// NewNullEmitter creates a new NullEmitter.
func NewNullEmitter() *NullEmitter {
	return &NullEmitter{}
}

// Emit discards the event.
func (n *NullEmitter) Emit(Event) {}
