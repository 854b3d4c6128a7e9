package runtime

import (
	"fmt"

	"github.com/rivet-ui/rivet/pkg/reactive"
	"github.com/rivet-ui/rivet/pkg/vdom"
)

// mountNodeLocked first-paints a subtree into containerID starting at the
// given index. Emission is pre-order: a view is created and attached before
// its children. The return value is the number of native slots the subtree
// occupies in the container; fragments contribute their children's slots,
// portal placeholders contribute none.
func (rt *Runtime) mountNodeLocked(v *vdom.VNode, containerID string, index int, owner *reactive.Owner) (int, error) {
	if v == nil {
		return 0, nil
	}
	switch v.Kind {
	case vdom.KindEmpty:
		return 0, nil

	case vdom.KindElement:
		return rt.mountElementLocked(v, containerID, index, owner)

	case vdom.KindFragment:
		return rt.mountFragmentLocked(v, containerID, index, owner)

	case vdom.KindStateful:
		return rt.mountStatefulLocked(v, containerID, index, owner)

	case vdom.KindStateless:
		return rt.mountStatelessLocked(v, containerID, index, owner)

	default:
		return 0, fmt.Errorf("runtime: mount: unknown node kind %v", v.Kind)
	}
}

func (rt *Runtime) mountElementLocked(v *vdom.VNode, containerID string, index int, owner *reactive.Owner) (int, error) {
	id := v.NativeID
	if id == "" {
		id = rt.viewIDs.allocate()
	}
	if err := rt.bridge.CreateView(id, v.Type, vdom.PlainProps(v.Props)); err != nil {
		return 0, err
	}
	if events := v.EventTypes(); len(events) > 0 {
		if err := rt.bridge.AddEventListeners(id, events); err != nil {
			return 0, err
		}
	}
	if err := rt.attachViewLocked(id, containerID, index); err != nil {
		return 0, err
	}
	v.NativeID = id
	rt.nodesByView[id] = v

	childIdx := 0
	for _, c := range v.Children {
		n, err := rt.mountNodeLocked(c, id, childIdx, owner)
		if err != nil {
			return 0, err
		}
		childIdx += n
	}
	return 1, nil
}

func (rt *Runtime) mountFragmentLocked(v *vdom.VNode, containerID string, index int, owner *reactive.Owner) (int, error) {
	switch v.Portal {
	case vdom.PortalTarget:
		rt.registerPortalLocked(v, containerID)
		return rt.mountChildrenLocked(v.Children, containerID, index, owner)

	case vdom.PortalPlaceholder:
		target, err := rt.portalContainerLocked(v.PortalName)
		if err != nil {
			return 0, err
		}
		base := len(rt.childOrder[target])
		if _, err := rt.mountChildrenLocked(v.Children, target, base, owner); err != nil {
			return 0, err
		}
		// Content lives in the target container; the placeholder occupies
		// no slot under its structural parent.
		return 0, nil

	default:
		return rt.mountChildrenLocked(v.Children, containerID, index, owner)
	}
}

func (rt *Runtime) mountChildrenLocked(children []*vdom.VNode, containerID string, index int, owner *reactive.Owner) (int, error) {
	total := 0
	for _, c := range children {
		n, err := rt.mountNodeLocked(c, containerID, index+total, owner)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func (rt *Runtime) mountStatefulLocked(v *vdom.VNode, containerID string, index int, owner *reactive.Owner) (int, error) {
	in := rt.newStatefulInstance(v, owner, containerID, index)
	rt.registerInstanceLocked(in)

	out, err := rt.renderComponentLocked(in, v)
	if err != nil {
		return 0, err
	}
	v.SetRendered(out)

	n, err := rt.mountNodeLocked(out, containerID, index, in.owner)
	if err != nil {
		return 0, err
	}
	if m, ok := v.Comp.(Mounter); ok {
		rt.queueHookLocked(m.DidMount)
	}
	return n, nil
}

func (rt *Runtime) mountStatelessLocked(v *vdom.VNode, containerID string, index int, owner *reactive.Owner) (int, error) {
	in := rt.newStatelessInstance(v, containerID, index)
	rt.registerInstanceLocked(in)

	out, err := rt.renderStatelessLocked(in, v)
	if err != nil {
		return 0, err
	}
	v.SetRendered(out)
	return rt.mountNodeLocked(out, containerID, index, owner)
}

// renderComponentLocked invokes a stateful component's Render with the
// instance's owner scope active and the instance subscribed as the
// listener, so signal reads during render register the dependency. Panics
// become RenderErrors for boundary routing.
func (rt *Runtime) renderComponentLocked(in *Instance, wrapper *vdom.VNode) (out *vdom.VNode, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &RenderError{InstanceID: in.id, Err: fmt.Errorf("render panic: %v", r)}
		}
	}()
	in.owner.StartRender()
	reactive.WithOwner(in.owner, func() {
		reactive.WithListener(in, func() {
			out = wrapper.Comp.Render()
		})
	})
	if out == nil {
		out = vdom.Empty()
	}
	return out, nil
}

// renderStatelessLocked invokes a stateless render function. No tracking
// scope: a pure function over props has nothing to subscribe.
func (rt *Runtime) renderStatelessLocked(in *Instance, wrapper *vdom.VNode) (out *vdom.VNode, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &RenderError{InstanceID: in.id, Err: fmt.Errorf("render panic: %v", r)}
		}
	}()
	out = wrapper.Render(wrapper.Props)
	if out == nil {
		out = vdom.Empty()
	}
	return out, nil
}

// unmountNodeLocked tears a subtree down: lifecycle hooks, instance
// disposal, and native deletion. removeNative is true only for the top of
// the cascade; the host deletes descendants of a deleted view itself, so
// exactly one DeleteView is emitted per detached native root.
func (rt *Runtime) unmountNodeLocked(v *vdom.VNode, removeNative bool) error {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case vdom.KindEmpty:
		return nil

	case vdom.KindElement:
		for _, c := range v.Children {
			if err := rt.unmountNodeLocked(c, false); err != nil {
				return err
			}
		}
		if v.NativeID != "" {
			if removeNative {
				if err := rt.deleteViewLocked(v.NativeID); err != nil {
					return err
				}
			} else {
				rt.forgetViewLocked(v.NativeID)
			}
			delete(rt.nodesByView, v.NativeID)
			delete(rt.childOrder, v.NativeID)
			v.NativeID = ""
		}
		return nil

	case vdom.KindFragment:
		if v.Portal == vdom.PortalTarget {
			rt.unregisterPortalLocked(v)
		}
		if v.Portal == vdom.PortalPlaceholder {
			// Content is top-level in the target container regardless of
			// how this placeholder's structural parent is being removed.
			for _, c := range v.Children {
				if err := rt.unmountNodeLocked(c, true); err != nil {
					return err
				}
			}
			return nil
		}
		for _, c := range v.Children {
			if err := rt.unmountNodeLocked(c, removeNative); err != nil {
				return err
			}
		}
		return nil

	case vdom.KindStateful:
		if u, ok := v.Comp.(Unmounter); ok {
			rt.invokeHookLocked(v.InstanceID, "WillUnmount", u.WillUnmount)
		}
		if err := rt.unmountNodeLocked(v.Rendered, removeNative); err != nil {
			return err
		}
		rt.deregisterInstanceLocked(v.InstanceID)
		v.Rendered = nil
		return nil

	case vdom.KindStateless:
		if err := rt.unmountNodeLocked(v.Rendered, removeNative); err != nil {
			return err
		}
		rt.deregisterInstanceLocked(v.InstanceID)
		v.Rendered = nil
		return nil

	default:
		return fmt.Errorf("runtime: unmount: unknown node kind %v", v.Kind)
	}
}

// nativeRoots returns the top-level element nodes a subtree contributes to
// its container, resolving fragments and component wrappers. Portal
// placeholder content is excluded; it lives in another container.
func nativeRoots(v *vdom.VNode) []*vdom.VNode {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case vdom.KindElement:
		return []*vdom.VNode{v}
	case vdom.KindFragment:
		if v.Portal == vdom.PortalPlaceholder {
			return nil
		}
		var out []*vdom.VNode
		for _, c := range v.Children {
			out = append(out, nativeRoots(c)...)
		}
		return out
	case vdom.KindStateful, vdom.KindStateless:
		return nativeRoots(v.Rendered)
	default:
		return nil
	}
}

// countNative returns the number of native slots a mounted subtree occupies
// in its container.
func countNative(v *vdom.VNode) int {
	return len(nativeRoots(v))
}
