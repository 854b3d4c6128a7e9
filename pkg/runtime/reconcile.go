package runtime

import (
	"reflect"

	"github.com/rivet-ui/rivet/pkg/reactive"
	"github.com/rivet-ui/rivet/pkg/vdom"
)

// reconcileNodeLocked diffs a mounted subtree against its replacement and
// emits the minimal bridge commands into the open transaction. It returns
// the number of native slots the new subtree occupies in the container.
func (rt *Runtime) reconcileNodeLocked(old, new *vdom.VNode, containerID string, index int, owner *reactive.Owner) (int, error) {
	if old == nil {
		return rt.mountNodeLocked(new, containerID, index, owner)
	}
	if new == nil {
		if err := rt.unmountNodeLocked(old, true); err != nil {
			return 0, err
		}
		return 0, nil
	}
	if !reconcilable(old, new) {
		return rt.replaceNodeLocked(old, new, containerID, index, owner)
	}

	switch new.Kind {
	case vdom.KindEmpty:
		return 0, nil
	case vdom.KindElement:
		return rt.patchElementLocked(old, new, containerID, index, owner)
	case vdom.KindFragment:
		return rt.patchFragmentLocked(old, new, containerID, index, owner)
	case vdom.KindStateful:
		return rt.patchStatefulLocked(old, new, containerID, index, owner)
	case vdom.KindStateless:
		return rt.patchStatelessLocked(old, new, containerID, index, owner)
	default:
		return rt.replaceNodeLocked(old, new, containerID, index, owner)
	}
}

// reconcilable reports whether new can patch old in place. Variant, key,
// element type tag, portal role, and component type must all agree;
// anything else is a replace.
func reconcilable(old, new *vdom.VNode) bool {
	if old == nil || new == nil {
		return false
	}
	if old.Kind != new.Kind || old.Key != new.Key {
		return false
	}
	switch new.Kind {
	case vdom.KindElement:
		return old.Type == new.Type
	case vdom.KindFragment:
		return old.Portal == new.Portal && old.PortalName == new.PortalName
	case vdom.KindStateful:
		return reflect.TypeOf(old.Comp) == reflect.TypeOf(new.Comp)
	default:
		return true
	}
}

// replaceNodeLocked unmounts old and mounts new in its place. When both
// sides are elements the native identity handle is reused: the host sees
// DeleteView followed by CreateView under the same ID.
func (rt *Runtime) replaceNodeLocked(old, new *vdom.VNode, containerID string, index int, owner *reactive.Owner) (int, error) {
	reuse := ""
	if old.Kind == vdom.KindElement && new.Kind == vdom.KindElement {
		reuse = old.NativeID
	}
	if err := rt.unmountNodeLocked(old, true); err != nil {
		return 0, err
	}
	if reuse != "" {
		new.NativeID = reuse
	}
	vdom.TransferParent(old, new)
	return rt.mountNodeLocked(new, containerID, index, owner)
}

func (rt *Runtime) patchElementLocked(old, new *vdom.VNode, containerID string, index int, owner *reactive.Owner) (int, error) {
	id := old.NativeID
	if id == "" {
		return rt.mountNodeLocked(new, containerID, index, owner)
	}
	new.NativeID = id
	vdom.TransferParent(old, new)
	rt.nodesByView[id] = new

	if changed := diffProps(old.Props, new.Props); len(changed) > 0 {
		if err := rt.bridge.UpdateView(id, changed); err != nil {
			return 0, err
		}
	}

	added, removed := diffStringSets(old.EventTypes(), new.EventTypes())
	if len(removed) > 0 {
		if err := rt.bridge.RemoveEventListeners(id, removed); err != nil {
			return 0, err
		}
	}
	if len(added) > 0 {
		if err := rt.bridge.AddEventListeners(id, added); err != nil {
			return 0, err
		}
	}

	if _, err := rt.reconcileChildrenLocked(old.Children, new.Children, id, 0, owner, true); err != nil {
		return 0, err
	}
	return 1, nil
}

func (rt *Runtime) patchFragmentLocked(old, new *vdom.VNode, containerID string, index int, owner *reactive.Owner) (int, error) {
	vdom.TransferParent(old, new)

	switch new.Portal {
	case vdom.PortalTarget:
		if t := rt.portals[new.PortalName]; t != nil && t.node == old {
			t.node = new
			t.containerID = containerID
		} else {
			rt.registerPortalLocked(new, containerID)
		}
		return rt.reconcileChildrenLocked(old.Children, new.Children, containerID, index, owner, false)

	case vdom.PortalPlaceholder:
		target, err := rt.portalContainerLocked(new.PortalName)
		if err != nil {
			return 0, err
		}
		base := rt.portalContentBaseLocked(target, old.Children)
		if _, err := rt.reconcileChildrenLocked(old.Children, new.Children, target, base, owner, false); err != nil {
			return 0, err
		}
		return 0, nil

	default:
		return rt.reconcileChildrenLocked(old.Children, new.Children, containerID, index, owner, false)
	}
}

func (rt *Runtime) patchStatefulLocked(old, new *vdom.VNode, containerID string, index int, owner *reactive.Owner) (int, error) {
	in := rt.stateful[old.InstanceID]
	if in == nil {
		return rt.replaceNodeLocked(old, new, containerID, index, owner)
	}

	// The live component value carries the state; the wrapper built by the
	// parent's render is discarded in its favor.
	new.Comp = old.Comp
	new.InstanceID = old.InstanceID
	vdom.TransferParent(old, new)
	in.node = new
	in.containerID = containerID
	in.slot = index
	in.dirty.Store(false)

	if p, ok := new.Comp.(PreUpdater); ok {
		rt.invokeHookLocked(in.id, "WillUpdate", p.WillUpdate)
	}

	out, err := rt.renderComponentLocked(in, new)
	if err != nil {
		return 0, err
	}
	prev := old.Rendered
	new.SetRendered(out)
	n, err := rt.reconcileNodeLocked(prev, out, containerID, index, in.owner)
	if err != nil {
		return 0, err
	}
	if p, ok := new.Comp.(PostUpdater); ok {
		rt.queueHookLocked(p.DidUpdate)
	}
	return n, nil
}

func (rt *Runtime) patchStatelessLocked(old, new *vdom.VNode, containerID string, index int, owner *reactive.Owner) (int, error) {
	in := rt.stateless[old.InstanceID]

	// Memoization short-circuit: a structurally equal stateless node keeps
	// the previous output untouched. Zero bridge commands for the subtree.
	if vdom.Equal(old, new) {
		new.InstanceID = old.InstanceID
		new.SetRendered(old.Rendered)
		vdom.TransferParent(old, new)
		if in != nil {
			in.node = new
			in.containerID = containerID
			in.slot = index
		}
		return countNative(new.Rendered), nil
	}

	new.InstanceID = old.InstanceID
	vdom.TransferParent(old, new)
	if in != nil {
		in.node = new
		in.containerID = containerID
		in.slot = index
	} else {
		in = rt.newStatelessInstance(new, containerID, index)
		rt.registerInstanceLocked(in)
	}

	out, err := rt.renderStatelessLocked(in, new)
	if err != nil {
		return 0, err
	}
	prev := old.Rendered
	new.SetRendered(out)
	return rt.reconcileNodeLocked(prev, out, containerID, index, owner)
}

// rerenderInstanceLocked drives a scheduler-initiated re-render of one
// dirty stateful instance, reconciling the new output against the cached
// one in place.
func (rt *Runtime) rerenderInstanceLocked(in *Instance) error {
	wrapper := in.node
	if wrapper == nil || wrapper.Comp == nil {
		return nil
	}
	if p, ok := wrapper.Comp.(PreUpdater); ok {
		rt.invokeHookLocked(in.id, "WillUpdate", p.WillUpdate)
	}
	out, err := rt.renderComponentLocked(in, wrapper)
	if err != nil {
		return err
	}
	prev := wrapper.Rendered
	wrapper.SetRendered(out)
	if _, err := rt.reconcileNodeLocked(prev, out, in.containerID, in.slot, in.owner); err != nil {
		return err
	}
	if p, ok := wrapper.Comp.(PostUpdater); ok {
		rt.queueHookLocked(p.DidUpdate)
	}
	return nil
}

// diffProps computes the changed subset of plain props, with nil marking a
// removal. Event handler props never reach the bridge.
func diffProps(oldProps, newProps vdom.Props) map[string]any {
	oldPlain := vdom.PlainProps(oldProps)
	newPlain := vdom.PlainProps(newProps)

	var changed map[string]any
	for k, nv := range newPlain {
		ov, ok := oldPlain[k]
		if ok && vdom.ValueEqual(ov, nv) {
			continue
		}
		if changed == nil {
			changed = make(map[string]any)
		}
		changed[k] = nv
	}
	for k := range oldPlain {
		if _, ok := newPlain[k]; !ok {
			if changed == nil {
				changed = make(map[string]any)
			}
			changed[k] = nil
		}
	}
	return changed
}

// diffStringSets returns the entries added to and removed from a sorted
// string set.
func diffStringSets(old, new []string) (added, removed []string) {
	oldSet := make(map[string]struct{}, len(old))
	for _, s := range old {
		oldSet[s] = struct{}{}
	}
	newSet := make(map[string]struct{}, len(new))
	for _, s := range new {
		newSet[s] = struct{}{}
	}
	for _, s := range new {
		if _, ok := oldSet[s]; !ok {
			added = append(added, s)
		}
	}
	for _, s := range old {
		if _, ok := newSet[s]; !ok {
			removed = append(removed, s)
		}
	}
	return added, removed
}
