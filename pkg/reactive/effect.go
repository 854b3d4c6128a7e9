package reactive

import (
	"sync"
	"sync/atomic"
)

// Effect is a side effect that re-runs when its dependencies change.
// Dependencies are tracked automatically: any signal read during the effect
// body subscribes the effect.
//
// Effects created during a component render do not run immediately; they
// are scheduled on the owner and run after the bridge transaction resolves.
type Effect struct {
	id uint64

	fn      func() Cleanup
	cleanup Cleanup

	sources   []*signalBase
	sourcesMu sync.Mutex

	owner *Owner

	pending  atomic.Bool
	disposed atomic.Bool
}

// MarkDirty schedules the effect to re-run. Implements Listener.
func (e *Effect) MarkDirty() {
	if e.disposed.Load() {
		return
	}
	if e.pending.CompareAndSwap(false, true) {
		if e.owner != nil {
			e.owner.scheduleEffect(e)
		}
	}
}

// ID returns the unique identifier for this effect. Implements Listener.
func (e *Effect) ID() uint64 {
	return e.id
}

// run executes the effect body, re-tracking dependencies from scratch.
func (e *Effect) run() {
	if e.disposed.Load() {
		return
	}

	e.pending.Store(false)

	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}

	e.sourcesMu.Lock()
	for _, source := range e.sources {
		source.unsubscribe(e)
	}
	e.sources = e.sources[:0]
	e.sourcesMu.Unlock()

	oldListener := setCurrentListener(e)
	e.cleanup = e.fn()
	setCurrentListener(oldListener)
}

// addSource records a signal dependency. Called by signals on read.
func (e *Effect) addSource(source *signalBase) {
	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()
	for _, s := range e.sources {
		if s == source {
			return
		}
	}
	e.sources = append(e.sources, source)
}

func (e *Effect) dispose() {
	if e.disposed.Swap(true) {
		return
	}

	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}

	e.sourcesMu.Lock()
	for _, source := range e.sources {
		source.unsubscribe(e)
	}
	e.sources = nil
	e.sourcesMu.Unlock()
}

// CreateEffect creates an effect owned by the current owner and schedules
// its first run. During a render the first run is deferred with the rest of
// the pending effects; outside a render it is still deferred until the
// owner's RunPendingEffects, keeping effect execution out of transactions.
func CreateEffect(fn func() Cleanup) *Effect {
	owner := getCurrentOwner()

	e := &Effect{
		id:    nextID(),
		fn:    fn,
		owner: owner,
	}

	if owner != nil {
		owner.registerEffect(e)
		e.pending.Store(true)
		owner.scheduleEffect(e)
		return e
	}

	// No owner: nothing will drain a pending queue, run inline.
	e.run()
	return e
}

// OnMount registers fn to run once after the component's first commit.
func OnMount(fn func()) {
	first := true
	CreateEffect(func() Cleanup {
		if first {
			first = false
			fn()
		}
		return nil
	})
}

// OnUnmount registers fn to run when the owning component unmounts.
func OnUnmount(fn func()) {
	if owner := getCurrentOwner(); owner != nil {
		owner.OnCleanup(fn)
	}
}
