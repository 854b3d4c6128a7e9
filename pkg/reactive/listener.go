package reactive

// Listener is anything that can be notified when a dependency changes.
// Component instances and effects implement it.
type Listener interface {
	// MarkDirty notifies the listener that a dependency has changed.
	// For component instances this schedules a re-render; for effects it
	// schedules a re-run.
	MarkDirty()

	// ID returns a unique identifier, used for deduplication when a batch
	// of updates drains.
	ID() uint64
}

// Cleanup is returned by effects to release resources. It runs before the
// effect re-runs and when the effect is disposed.
type Cleanup func()
