package runtime

import (
	"errors"
	"fmt"
)

// Sentinel errors for the render pipeline.
var (
	// ErrBridgeNotInitialized is returned when a render entry point runs
	// before the bridge handshake has resolved.
	ErrBridgeNotInitialized = errors.New("runtime: bridge not initialized")

	// ErrBatchInFlight is returned when a flush is requested while another
	// batch is committing. Batches are strictly sequential.
	ErrBatchInFlight = errors.New("runtime: batch already in flight")

	// ErrRootReplaced is returned when an operation references a view that
	// is no longer part of the mounted tree, typically because CreateRoot
	// tore the previous tree down.
	ErrRootReplaced = errors.New("runtime: view not in current tree")

	// ErrNoPortalTarget is returned when a portal placeholder names a
	// target that is not mounted.
	ErrNoPortalTarget = errors.New("runtime: portal target not mounted")

	// ErrNoHandler is returned when an inbound event resolves to a node
	// with no matching handler prop under any casing convention.
	ErrNoHandler = errors.New("runtime: no handler for event")
)

// RenderError wraps a failure raised while rendering or reconciling a
// subtree, annotated with the component instance it escaped from. It
// reaches the flush caller only when no error boundary recovered it.
type RenderError struct {
	InstanceID string
	Err        error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	return fmt.Sprintf("runtime: render of %s failed: %v", e.InstanceID, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *RenderError) Unwrap() error {
	return e.Err
}
