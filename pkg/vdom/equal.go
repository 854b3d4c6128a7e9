package vdom

import "reflect"

// Equal reports structural equality of two subtrees. This backs the
// framework's sole built-in memoization: reconciling two stateless nodes
// that compare equal issues no bridge calls for that subtree.
//
// Render functions and handler callbacks are compared by identity, props by
// ValueEqual, children recursively. Native identity and cached render
// output are bookkeeping, not structure, and are ignored.
func Equal(a, b *VNode) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || a.Type != b.Type || a.Key != b.Key {
		return false
	}
	if a.Portal != b.Portal || a.PortalName != b.PortalName {
		return false
	}
	if !PropsEqual(a.Props, b.Props) {
		return false
	}
	switch a.Kind {
	case KindStateless:
		if !sameFunc(a.Render, b.Render) {
			return false
		}
	case KindStateful:
		if !sameComp(a.Comp, b.Comp) {
			return false
		}
	}
	if len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

func sameFunc(a, b RenderFunc) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

// sameComp compares component values by pointer identity where possible.
// Interface equality would panic on uncomparable component types.
func sameComp(a, b Component) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ra := reflect.ValueOf(a)
	rb := reflect.ValueOf(b)
	if ra.Kind() == reflect.Pointer && rb.Kind() == reflect.Pointer {
		return ra.Pointer() == rb.Pointer()
	}
	return reflect.DeepEqual(a, b)
}
