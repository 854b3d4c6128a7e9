package runtime

import (
	"errors"
	"fmt"

	"github.com/rivet-ui/rivet/pkg/vdom"
)

// recoverRenderErrorLocked walks the ownership chain upward from the
// failing instance to the nearest ErrorBoundary and substitutes its
// fallback output for the boundary's subtree. It reports whether the error
// was absorbed; an unabsorbed error fails the whole pass.
func (rt *Runtime) recoverRenderErrorLocked(err error) bool {
	var re *RenderError
	if !errors.As(err, &re) {
		return false
	}
	in := rt.lookupInstanceLocked(re.InstanceID)
	if in == nil || in.node == nil {
		return false
	}

	// A boundary does not catch its own render failure; the walk starts at
	// the failing wrapper's parent.
	for n := in.node.Parent(); n != nil; n = n.Parent() {
		if n.Kind != vdom.KindStateful {
			continue
		}
		b, ok := n.Comp.(ErrorBoundary)
		if !ok {
			continue
		}
		if rt.applyBoundaryLocked(n, b, err) {
			return true
		}
	}
	return false
}

// applyBoundaryLocked replaces the boundary's rendered output with the
// fallback tree produced by CatchRenderError. The boundary's previous
// subtree is fully unmounted; the fallback mounts in its place inside the
// same transaction.
func (rt *Runtime) applyBoundaryLocked(bNode *vdom.VNode, b ErrorBoundary, cause error) bool {
	in := rt.stateful[bNode.InstanceID]
	if in == nil {
		return false
	}

	var fallback *vdom.VNode
	if perr := catchPanic(func() { fallback = b.CatchRenderError(cause) }); perr != nil {
		rt.logger.Error("error boundary handler panicked",
			"boundary", bNode.InstanceID, "error", perr)
		return false
	}
	if fallback == nil {
		fallback = vdom.Empty()
	}

	if bNode.Rendered != nil {
		if err := rt.unmountNodeLocked(bNode.Rendered, true); err != nil {
			rt.logger.Error("error boundary teardown failed",
				"boundary", bNode.InstanceID, "error", err)
			return false
		}
	}
	bNode.SetRendered(fallback)
	if _, err := rt.mountNodeLocked(fallback, in.containerID, in.slot, in.owner); err != nil {
		rt.logger.Error("error boundary fallback mount failed",
			"boundary", bNode.InstanceID, "error", err)
		return false
	}

	rt.logger.Warn("render error recovered by boundary",
		"boundary", bNode.InstanceID, "error", cause)
	return true
}

func catchPanic(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	fn()
	return nil
}
