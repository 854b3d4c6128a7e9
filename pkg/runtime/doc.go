// Package runtime is the reconciliation engine of Rivet.
//
// A Runtime owns one tree root and everything attached to it: the mounted
// node tree, the component instance registries, the update scheduler, the
// portal registry, and the handler table for inbound native events. All of
// that state lives in the Runtime value rather than package globals, so
// independent roots (and tests) never contaminate each other.
//
// The data flow is: a state mutation marks a component instance dirty, the
// scheduler coalesces dirty instances into a batch, the reconciler
// re-renders each one and diffs old against new output, emitting bridge
// calls inside a single transaction. After the transaction commits,
// lifecycle hooks fire and deferred effects run. Batches are strictly
// sequential; instances dirtied while a batch commits land in the next one.
package runtime
