package vdom

// El creates an element node for the given native type tag.
func El(typeTag string, props Props, children ...*VNode) *VNode {
	v := &VNode{
		Kind:  KindElement,
		Type:  typeTag,
		Props: props,
	}
	v.Adopt(children...)
	return v
}

// Keyed returns the node with an explicit reconciliation key set.
func (v *VNode) Keyed(key string) *VNode {
	v.Key = key
	return v
}

// Frag creates a transparent grouping node. Its children render directly
// into the nearest native ancestor's container.
func Frag(children ...*VNode) *VNode {
	v := &VNode{Kind: KindFragment}
	v.Adopt(children...)
	return v
}

// Portal creates a placeholder fragment whose children render into the
// portal target registered under name, instead of the structural parent.
func Portal(name string, children ...*VNode) *VNode {
	v := &VNode{
		Kind:       KindFragment,
		Portal:     PortalPlaceholder,
		PortalName: name,
	}
	v.Adopt(children...)
	return v
}

// Target creates the receiving end of a portal redirection. Content from
// placeholders naming it is attached under this fragment's native parent.
func Target(name string, children ...*VNode) *VNode {
	v := &VNode{
		Kind:       KindFragment,
		Portal:     PortalTarget,
		PortalName: name,
	}
	v.Adopt(children...)
	return v
}

// Stateful wraps a component value as a tree node.
func Stateful(comp Component) *VNode {
	return &VNode{Kind: KindStateful, Comp: comp}
}

// Stateless wraps a pure render function and its props as a tree node.
func Stateless(render RenderFunc, props Props) *VNode {
	return &VNode{Kind: KindStateless, Render: render, Props: props}
}

// Empty creates a node that produces no native output.
func Empty() *VNode {
	return &VNode{Kind: KindEmpty}
}
