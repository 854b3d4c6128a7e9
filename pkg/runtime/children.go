package runtime

import (
	"github.com/rivet-ui/rivet/pkg/reactive"
	"github.com/rivet-ui/rivet/pkg/vdom"
)

// reconcileChildrenLocked diffs two ordered child lists within one native
// container, starting at slot base. The keyed strategy engages as soon as
// either side carries an explicit key. whole marks lists that span the
// entire container, which is the only case where a structural change
// resubmits the full child order via SetChildren.
func (rt *Runtime) reconcileChildrenLocked(oldKids, newKids []*vdom.VNode, containerID string, base int, owner *reactive.Owner, whole bool) (int, error) {
	if hasKeys(oldKids) || hasKeys(newKids) {
		return rt.reconcileKeyedLocked(oldKids, newKids, containerID, base, owner, whole)
	}
	return rt.reconcileUnkeyedLocked(oldKids, newKids, containerID, base, owner)
}

func hasKeys(kids []*vdom.VNode) bool {
	for _, c := range kids {
		if c != nil && c.Key != "" {
			return true
		}
	}
	return false
}

// reconcileUnkeyedLocked pairs children by position: shared prefix patches
// in place, surplus new children mount, surplus old children unmount. No
// move detection.
func (rt *Runtime) reconcileUnkeyedLocked(oldKids, newKids []*vdom.VNode, containerID string, base int, owner *reactive.Owner) (int, error) {
	idx := base
	shared := len(oldKids)
	if len(newKids) < shared {
		shared = len(newKids)
	}

	for i := 0; i < shared; i++ {
		n, err := rt.reconcileNodeLocked(oldKids[i], newKids[i], containerID, idx, owner)
		if err != nil {
			return 0, err
		}
		idx += n
	}
	for i := shared; i < len(newKids); i++ {
		n, err := rt.mountNodeLocked(newKids[i], containerID, idx, owner)
		if err != nil {
			return 0, err
		}
		idx += n
	}
	for i := shared; i < len(oldKids); i++ {
		if err := rt.unmountNodeLocked(oldKids[i], true); err != nil {
			return 0, err
		}
	}
	return idx - base, nil
}

type keyedEntry struct {
	node *vdom.VNode
	pos  int
}

// reconcileKeyedLocked matches children by effective key (explicit key, or
// position for unkeyed entries). A matched child whose position changed is
// moved with DetachView + AttachView at the new index; a key present only
// on one side mounts or unmounts; a key collision with an incompatible node
// replaces under the reused identity. Reordering existing children never
// creates or deletes views.
func (rt *Runtime) reconcileKeyedLocked(oldKids, newKids []*vdom.VNode, containerID string, base int, owner *reactive.Owner, whole bool) (int, error) {
	oldByKey := make(map[string]keyedEntry, len(oldKids))
	for i, c := range oldKids {
		oldByKey[c.EffectiveKey(i)] = keyedEntry{node: c, pos: i}
	}
	newKeys := make(map[string]struct{}, len(newKids))
	for i, c := range newKids {
		newKeys[c.EffectiveKey(i)] = struct{}{}
	}

	matched := make([]bool, len(oldKids))
	structural := false
	idx := base

	for j, newKid := range newKids {
		key := newKid.EffectiveKey(j)
		entry, found := oldByKey[key]
		if found && matched[entry.pos] {
			found = false
		}

		switch {
		case found && reconcilable(entry.node, newKid):
			matched[entry.pos] = true
			n, err := rt.reconcileNodeLocked(entry.node, newKid, containerID, idx, owner)
			if err != nil {
				return 0, err
			}
			if entry.pos != j {
				structural = true
				if err := rt.moveNativeLocked(newKid, containerID, idx); err != nil {
					return 0, err
				}
			}
			idx += n

		case found:
			// Same key, incompatible node: replace in place.
			matched[entry.pos] = true
			structural = true
			n, err := rt.replaceNodeLocked(entry.node, newKid, containerID, idx, owner)
			if err != nil {
				return 0, err
			}
			idx += n

		default:
			// Positional fallback: pair with the unclaimed old child at
			// the same position, otherwise mount fresh.
			if j < len(oldKids) && !matched[j] {
				if _, claimed := newKeys[oldKids[j].EffectiveKey(j)]; !claimed {
					matched[j] = true
					structural = true
					n, err := rt.replaceNodeLocked(oldKids[j], newKid, containerID, idx, owner)
					if err != nil {
						return 0, err
					}
					idx += n
					continue
				}
			}
			structural = true
			n, err := rt.mountNodeLocked(newKid, containerID, idx, owner)
			if err != nil {
				return 0, err
			}
			idx += n
		}
	}

	for i, c := range oldKids {
		if !matched[i] {
			structural = true
			if err := rt.unmountNodeLocked(c, true); err != nil {
				return 0, err
			}
		}
	}

	if whole && structural {
		order := append([]string(nil), rt.childOrder[containerID]...)
		if err := rt.bridge.SetChildren(containerID, order); err != nil {
			return 0, err
		}
	}
	return idx - base, nil
}

// moveNativeLocked reattaches a subtree's native roots at a new position in
// their container.
func (rt *Runtime) moveNativeLocked(v *vdom.VNode, containerID string, index int) error {
	for k, el := range nativeRoots(v) {
		if el.NativeID == "" {
			continue
		}
		if err := rt.detachViewLocked(el.NativeID); err != nil {
			return err
		}
		if err := rt.attachViewLocked(el.NativeID, containerID, index+k); err != nil {
			return err
		}
	}
	return nil
}
