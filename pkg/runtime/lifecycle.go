package runtime

import (
	"sync/atomic"

	"github.com/rivet-ui/rivet/pkg/reactive"
	"github.com/rivet-ui/rivet/pkg/vdom"
)

// Optional lifecycle interfaces. A component opts in by implementing one or
// more; none are required.

// Mounter is notified once, after the batch that mounted the component
// commits.
type Mounter interface {
	DidMount()
}

// PreUpdater is notified before each re-render of a mounted component.
type PreUpdater interface {
	WillUpdate()
}

// PostUpdater is notified after the batch carrying a re-render commits.
type PostUpdater interface {
	DidUpdate()
}

// Unmounter is notified before the component's native views are removed
// and its state disposed.
type Unmounter interface {
	WillUnmount()
}

// ErrorBoundary marks a stateful component as a recovery point for render
// failures in its subtree. CatchRenderError returns the fallback tree that
// replaces the boundary's rendered output.
type ErrorBoundary interface {
	vdom.Component
	CatchRenderError(err error) *vdom.VNode
}

type instanceKind uint8

const (
	instStateful instanceKind = iota
	instStateless
)

// Instance is the runtime's bookkeeping for one mounted component. Stateful
// instances implement reactive.Listener: a signal read during render
// subscribes the instance, and a later write to that signal marks it
// dirty for re-render. Stateless instances exist for registration and inspection
// only; nothing can dirty them.
type Instance struct {
	id         string
	kind       instanceKind
	listenerID uint64

	rt    *Runtime
	owner *reactive.Owner

	// node is the wrapper currently holding this instance in the tree.
	// Reconciliation moves it to the new wrapper on every parent render.
	node *vdom.VNode

	// containerID and slot record where the instance's output attaches,
	// so a self-triggered re-render can reconcile in place.
	containerID string
	slot        int

	dirty   atomic.Bool
	mounted atomic.Bool
}

// InstanceID returns the stable instance identifier.
func (in *Instance) InstanceID() string {
	return in.id
}

// ID implements reactive.Listener.
func (in *Instance) ID() uint64 {
	return in.listenerID
}

// MarkDirty schedules a re-render. Idempotent until the scheduler picks the
// instance up. Implements reactive.Listener.
func (in *Instance) MarkDirty() {
	if in.kind != instStateful || !in.mounted.Load() {
		return
	}
	if in.dirty.CompareAndSwap(false, true) {
		in.rt.sched.enqueue(in)
	}
}

// registerInstanceLocked adds the instance to its registry. Registration is
// idempotent; an already registered ID is left untouched.
func (rt *Runtime) registerInstanceLocked(in *Instance) {
	reg := rt.stateful
	if in.kind == instStateless {
		reg = rt.stateless
	}
	if _, ok := reg[in.id]; ok {
		return
	}
	reg[in.id] = in
	rt.metrics.liveInstances.Inc()
}

func (rt *Runtime) deregisterInstanceLocked(id string) {
	in := rt.lookupInstanceLocked(id)
	if in == nil {
		return
	}
	in.mounted.Store(false)
	in.dirty.Store(false)
	if in.owner != nil {
		in.owner.Dispose()
	}
	if in.kind == instStateless {
		delete(rt.stateless, id)
	} else {
		delete(rt.stateful, id)
	}
	rt.metrics.liveInstances.Dec()
}

func (rt *Runtime) lookupInstanceLocked(id string) *Instance {
	if in, ok := rt.stateful[id]; ok {
		return in
	}
	return rt.stateless[id]
}

func (rt *Runtime) newStatefulInstance(wrapper *vdom.VNode, parent *reactive.Owner, containerID string, slot int) *Instance {
	in := &Instance{
		id:          rt.instanceIDs.allocate(),
		kind:        instStateful,
		listenerID:  listenerIDs.Add(1),
		rt:          rt,
		owner:       reactive.NewOwner(parent),
		node:        wrapper,
		containerID: containerID,
		slot:        slot,
	}
	in.mounted.Store(true)
	wrapper.InstanceID = in.id
	return in
}

func (rt *Runtime) newStatelessInstance(wrapper *vdom.VNode, containerID string, slot int) *Instance {
	in := &Instance{
		id:          rt.instanceIDs.allocate(),
		kind:        instStateless,
		listenerID:  listenerIDs.Add(1),
		rt:          rt,
		node:        wrapper,
		containerID: containerID,
		slot:        slot,
	}
	in.mounted.Store(true)
	wrapper.InstanceID = in.id
	return in
}
