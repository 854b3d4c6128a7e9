// Package reactive provides the state slots for Rivet's stateful
// components.
//
// Signal[T] is a reactive value container. Reading a signal during a
// tracked context (a component render) subscribes the current listener;
// writing it marks every subscriber dirty, which the runtime's scheduler
// coalesces into a reconciliation batch.
//
// Owner is a disposal scope. Each mounted component instance holds an
// Owner; signals and effects created during that component's render belong
// to it and are torn down when the instance unmounts. Owners form a
// hierarchy mirroring the component tree.
//
// Effect is a deferred side effect. Effects scheduled during a render run
// after the bridge transaction commits, never inside it.
package reactive
