package runtime

import "github.com/rivet-ui/rivet/pkg/vdom"

// Snapshot is a point-in-time, JSON-friendly view of the runtime for the
// inspector. It carries no live references; mutating it has no effect on
// the tree.
type Snapshot struct {
	Root               *NodeSnapshot `json:"root,omitempty"`
	StatefulInstances  int           `json:"statefulInstances"`
	StatelessInstances int           `json:"statelessInstances"`
	Portals            []string      `json:"portals,omitempty"`
	PendingUpdates     int           `json:"pendingUpdates"`
}

// NodeSnapshot mirrors one tree node. Handler props are reported by key
// only; their values do not serialize.
type NodeSnapshot struct {
	Kind       string          `json:"kind"`
	Type       string          `json:"type,omitempty"`
	Key        string          `json:"key,omitempty"`
	NativeID   string          `json:"nativeId,omitempty"`
	InstanceID string          `json:"instanceId,omitempty"`
	Portal     string          `json:"portal,omitempty"`
	PortalName string          `json:"portalName,omitempty"`
	Props      map[string]any  `json:"props,omitempty"`
	Events     []string        `json:"events,omitempty"`
	Children   []*NodeSnapshot `json:"children,omitempty"`
	Rendered   *NodeSnapshot   `json:"rendered,omitempty"`
}

// Snapshot captures the current tree and registry state.
func (rt *Runtime) Snapshot() *Snapshot {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	s := &Snapshot{
		StatefulInstances:  len(rt.stateful),
		StatelessInstances: len(rt.stateless),
		PendingUpdates:     rt.sched.pending(),
	}
	for name := range rt.portals {
		s.Portals = append(s.Portals, name)
	}
	s.Root = snapshotNode(rt.root)
	return s
}

func snapshotNode(v *vdom.VNode) *NodeSnapshot {
	if v == nil {
		return nil
	}
	ns := &NodeSnapshot{
		Kind:       v.Kind.String(),
		Type:       v.Type,
		Key:        v.Key,
		NativeID:   v.NativeID,
		InstanceID: v.InstanceID,
		PortalName: v.PortalName,
		Props:      vdom.PlainProps(v.Props),
		Events:     v.EventTypes(),
	}
	if v.Portal != vdom.PortalNone {
		ns.Portal = v.Portal.String()
	}
	for _, c := range v.Children {
		ns.Children = append(ns.Children, snapshotNode(c))
	}
	ns.Rendered = snapshotNode(v.Rendered)
	return ns
}
