// Package vdom provides the node model for the Rivet runtime.
//
// A VNode tree is an in-memory description of what should exist on the
// native side. The tree is built by component render functions, handed to
// the runtime, and reconciled against the previously rendered tree to
// produce a minimal set of bridge mutations. Nodes come in five variants:
//
//   - Element: a native widget with a type tag, props, and children
//   - Fragment: transparent grouping with no native identity of its own
//   - Stateful: a component with owned state slots and lifecycle hooks
//   - Stateless: a pure render function over props
//   - Empty: a valid node that renders nothing
//
// Fragments may additionally be tagged as portal placeholders or portal
// targets, redirecting their children's native placement to a named
// location elsewhere in the tree.
//
// The package is deliberately free of bridge and scheduling concerns;
// those live in pkg/runtime and pkg/bridge.
package vdom
