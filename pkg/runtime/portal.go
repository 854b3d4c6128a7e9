package runtime

import (
	"fmt"

	"github.com/rivet-ui/rivet/pkg/vdom"
)

// portalTarget records where a mounted portal target routes content: the
// native container the target fragment lives in. Placeholder children
// attach at the end of that container instead of under their structural
// parent.
type portalTarget struct {
	name        string
	containerID string
	node        *vdom.VNode
}

func (rt *Runtime) registerPortalLocked(node *vdom.VNode, containerID string) {
	rt.portals[node.PortalName] = &portalTarget{
		name:        node.PortalName,
		containerID: containerID,
		node:        node,
	}
}

func (rt *Runtime) unregisterPortalLocked(node *vdom.VNode) {
	t, ok := rt.portals[node.PortalName]
	if ok && t.node == node {
		delete(rt.portals, node.PortalName)
	}
}

// portalContainerLocked resolves a placeholder's destination container.
// Targets must mount before the placeholders naming them; the tree renders
// in pre-order, so placing the target earlier in the tree satisfies this.
func (rt *Runtime) portalContainerLocked(name string) (string, error) {
	t, ok := rt.portals[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNoPortalTarget, name)
	}
	return t.containerID, nil
}

// portalContentBaseLocked returns the attachment index for a placeholder's
// content in the target container: the position of its first already
// mounted native view, or the container end for fresh content.
func (rt *Runtime) portalContentBaseLocked(containerID string, oldContent []*vdom.VNode) int {
	for _, c := range oldContent {
		for _, el := range nativeRoots(c) {
			if el.NativeID == "" {
				continue
			}
			if idx := rt.containerIndexLocked(el.NativeID); idx >= 0 {
				return idx
			}
		}
	}
	return len(rt.childOrder[containerID])
}
