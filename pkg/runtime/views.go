package runtime

// Native view bookkeeping. The runtime mirrors the host's container child
// order so it can compute attachment indices for portals and resubmit full
// child orders via SetChildren without querying the host.

// attachViewLocked emits an attach and records the placement in the mirror.
func (rt *Runtime) attachViewLocked(id, parentID string, index int) error {
	if err := rt.bridge.AttachView(id, parentID, index); err != nil {
		return err
	}
	kids := rt.childOrder[parentID]
	if index > len(kids) {
		index = len(kids)
	}
	kids = append(kids, "")
	copy(kids[index+1:], kids[index:])
	kids[index] = id
	rt.childOrder[parentID] = kids
	rt.containerOf[id] = parentID
	return nil
}

// detachViewLocked emits a detach and drops the placement from the mirror.
// The view itself survives for reattachment.
func (rt *Runtime) detachViewLocked(id string) error {
	if err := rt.bridge.DetachView(id); err != nil {
		return err
	}
	rt.removeFromContainerLocked(id)
	return nil
}

// deleteViewLocked emits a delete and clears all mirror state for the view.
func (rt *Runtime) deleteViewLocked(id string) error {
	if err := rt.bridge.DeleteView(id); err != nil {
		return err
	}
	rt.removeFromContainerLocked(id)
	return nil
}

// forgetViewLocked clears mirror state without a bridge call, for views
// whose deletion the host cascades from an ancestor delete.
func (rt *Runtime) forgetViewLocked(id string) {
	delete(rt.containerOf, id)
}

func (rt *Runtime) removeFromContainerLocked(id string) {
	parent, ok := rt.containerOf[id]
	if !ok {
		return
	}
	delete(rt.containerOf, id)
	kids := rt.childOrder[parent]
	for i, k := range kids {
		if k == id {
			rt.childOrder[parent] = append(kids[:i], kids[i+1:]...)
			return
		}
	}
}

// containerIndexLocked returns the view's current position within its
// container, or -1 when it is not attached.
func (rt *Runtime) containerIndexLocked(id string) int {
	parent, ok := rt.containerOf[id]
	if !ok {
		return -1
	}
	for i, k := range rt.childOrder[parent] {
		if k == id {
			return i
		}
	}
	return -1
}
