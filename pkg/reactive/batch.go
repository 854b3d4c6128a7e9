package reactive

// Batch groups multiple signal updates into a single notification phase.
// Updates inside fn are collected and deduplicated; affected listeners are
// marked dirty once, when the outermost batch completes. This lets a
// handler touch several signals without triggering one reconciliation pass
// per write.
//
// Batches nest; notifications fire only when the outermost batch ends.
func Batch(fn func()) {
	incrementBatchDepth()

	defer func() {
		if decrementBatchDepth() {
			processPendingUpdates()
		}
	}()

	fn()
}

// processPendingUpdates deduplicates queued listeners by ID and marks each
// dirty exactly once.
func processPendingUpdates() {
	updates := drainPendingUpdates()
	if len(updates) == 0 {
		return
	}

	seen := make(map[uint64]bool, len(updates))
	for _, listener := range updates {
		id := listener.ID()
		if seen[id] {
			continue
		}
		seen[id] = true
		listener.MarkDirty()
	}
}
