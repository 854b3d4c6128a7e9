// Package bridge defines the contract between the Rivet runtime and a
// native platform host.
//
// The runtime drives a NativeBridge: an asynchronous, batchable protocol of
// view mutations (create/update/delete/attach/detach/set-children plus
// listener registration) wrapped in transactions. The platform layer
// implements the interface; this package additionally ships RemoteBridge, a
// websocket-backed implementation that encodes command batches with the
// binary codec in this package and hands inbound native events back to the
// runtime.
//
// The runtime blocks all view operations until Initialize resolves, and
// awaits CommitBatchUpdate before starting the next batch. A failed commit
// is answered with exactly one CancelBatchUpdate.
package bridge
