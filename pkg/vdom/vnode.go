package vdom

import "strconv"

// VKind is the node variant discriminator.
type VKind uint8

const (
	KindElement   VKind = iota // Native widget (View, Text, Button, ...)
	KindFragment               // Grouping without native identity
	KindStateful               // Component with owned state slots
	KindStateless              // Pure render function over props
	KindEmpty                  // Renders nothing
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindFragment:
		return "Fragment"
	case KindStateful:
		return "Stateful"
	case KindStateless:
		return "Stateless"
	case KindEmpty:
		return "Empty"
	default:
		return "Unknown"
	}
}

// PortalRole tags a fragment as one end of a portal redirection.
type PortalRole uint8

const (
	PortalNone        PortalRole = iota // Ordinary fragment
	PortalPlaceholder                   // Children render into the named target
	PortalTarget                        // Receiving end of a redirection
)

// String returns the string representation of the PortalRole.
func (r PortalRole) String() string {
	switch r {
	case PortalNone:
		return "None"
	case PortalPlaceholder:
		return "Placeholder"
	case PortalTarget:
		return "Target"
	default:
		return "Unknown"
	}
}

// Props holds native properties and event handler callbacks.
// Values are primitives, nested structures, or functions (handlers).
type Props map[string]any

// Component is a stateful component. Render produces the node tree for the
// component's current state. Components may additionally implement the
// lifecycle interfaces in pkg/runtime (Mounter, PreUpdater, PostUpdater,
// Unmounter, ErrorBoundary).
type Component interface {
	Render() *VNode
}

// RenderFunc is a stateless component's render function. It must be pure
// with respect to the previous tree: same props, same output.
type RenderFunc func(props Props) *VNode

// VNode is a node in the declarative tree.
//
// A node has at most one owner (its parent in the current tree). Ownership
// is established when the node is attached during tree construction and
// transferred explicitly during reconciliation, never shared implicitly.
type VNode struct {
	Kind     VKind    // Node variant
	Type     string   // Native type tag (KindElement only)
	Props    Props    // Properties and event handlers
	Children []*VNode // Ordered child nodes
	Key      string   // Explicit reconciliation key, "" for positional

	// NativeID is the native identity handle. It is set if and only if
	// rendering has produced a native view for this node, and cleared when
	// that view is deleted. Patch-in-place updates preserve it.
	NativeID string

	// Comp is the component value for KindStateful nodes.
	Comp Component

	// Render is the render function for KindStateless nodes.
	Render RenderFunc

	// InstanceID is the stable component instance identifier, assigned by
	// the runtime on mount. It is independent of tree position and never
	// reused once the instance unmounts.
	InstanceID string

	// Rendered caches the output of the last render invocation for
	// component nodes. Reconciliation recurses into this, not the wrapper.
	Rendered *VNode

	// Portal tags a KindFragment node as a portal endpoint.
	Portal PortalRole

	// PortalName names the redirection destination (placeholder) or the
	// destination itself (target).
	PortalName string

	parent *VNode
}

// Parent returns the node's owner in the current tree, or nil for a root.
func (v *VNode) Parent() *VNode {
	if v == nil {
		return nil
	}
	return v.parent
}

// Adopt attaches children to this node, transferring ownership. A child
// that already has a different parent is re-parented; the tree never shares
// a node between two parents.
func (v *VNode) Adopt(children ...*VNode) {
	for _, c := range children {
		if c == nil {
			continue
		}
		c.parent = v
		v.Children = append(v.Children, c)
	}
}

// TransferParent makes next take over prev's position in the tree. Used by
// the reconciler when a new wrapper replaces an old one in place.
func TransferParent(prev, next *VNode) {
	if prev == nil || next == nil {
		return
	}
	next.parent = prev.parent
}

// SetRendered caches a component's render output and parents it under the
// wrapper, so upward walks (error routing, portal resolution) pass through
// component boundaries.
func (v *VNode) SetRendered(r *VNode) {
	if r != nil {
		r.parent = v
	}
	v.Rendered = r
}

// IsComponent reports whether the node is a stateful or stateless wrapper.
func (v *VNode) IsComponent() bool {
	return v != nil && (v.Kind == KindStateful || v.Kind == KindStateless)
}

// EffectiveKey returns the node's explicit key, or the positional key for
// nodes without one. Two nodes are reconcilable only if their effective
// keys match.
func (v *VNode) EffectiveKey(index int) string {
	if v != nil && v.Key != "" {
		return v.Key
	}
	return positionalKey(index)
}

func positionalKey(index int) string {
	// Prefix keeps positional keys out of the explicit key namespace.
	return "\x00pos:" + strconv.Itoa(index)
}
