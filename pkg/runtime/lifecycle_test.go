package runtime_test

import (
	"strings"
	"testing"

	"github.com/rivet-ui/rivet/pkg/reactive"
	"github.com/rivet-ui/rivet/pkg/uitest"
	"github.com/rivet-ui/rivet/pkg/vdom"
)

func TestLifecycleHooksFireInOrder(t *testing.T) {
	h := uitest.NewHarness(t)
	c := newCounter()
	h.Mount(t, vdom.Stateful(c))

	if c.mounts != 1 {
		t.Fatalf("DidMount fired %d times after mount, want 1", c.mounts)
	}
	if c.updates != 0 {
		t.Fatalf("DidUpdate fired %d times after mount, want 0", c.updates)
	}

	c.count.Set(1)
	h.Flush(t)
	if c.updates != 1 {
		t.Errorf("DidUpdate fired %d times after one update, want 1", c.updates)
	}
	if c.mounts != 1 {
		t.Errorf("DidMount fired %d times total, want 1", c.mounts)
	}
}

func TestDidMountRunsAfterCommit(t *testing.T) {
	h := uitest.NewHarness(t)
	var committedAtMount int
	probe := &hookProbe{
		onMount: func() { committedAtMount = h.Bridge.Commits() },
	}
	h.Mount(t, vdom.Stateful(probe))

	if committedAtMount != 1 {
		t.Errorf("DidMount observed %d commits, want 1 (hook must follow the transaction)", committedAtMount)
	}
}

type hookProbe struct {
	onMount func()
}

func (p *hookProbe) Render() *vdom.VNode {
	return vdom.El("Text", nil)
}

func (p *hookProbe) DidMount() {
	if p.onMount != nil {
		p.onMount()
	}
}

type toggler struct {
	show  *reactive.Signal[bool]
	child *counter
}

func (g *toggler) Render() *vdom.VNode {
	if g.show.Get() {
		return vdom.El("View", nil,
			vdom.El("Box", nil, vdom.Stateful(g.child)),
		)
	}
	return vdom.El("View", nil)
}

func TestUnmountCascadeDeletesOnlyTopmost(t *testing.T) {
	h := uitest.NewHarness(t)
	g := &toggler{show: reactive.NewSignal(true), child: newCounter()}
	h.Mount(t, vdom.Stateful(g))
	boxID := firstViewID(t, h.Bridge, "Box")
	textID := firstViewID(t, h.Bridge, "Text")

	before := h.Runtime.Snapshot()
	h.Bridge.Reset()
	g.show.Set(false)
	h.Flush(t)

	if n := h.Bridge.Count("DeleteView"); n != 1 {
		t.Errorf("DeleteView called %d times, want 1 (host cascades descendants)", n)
	}
	if calls := h.Bridge.CallsFor(boxID); len(calls) != 1 || calls[0].Method != "DeleteView" {
		t.Errorf("Box calls = %+v, want exactly one DeleteView", calls)
	}
	if calls := h.Bridge.CallsFor(textID); len(calls) != 0 {
		t.Errorf("descendant %s received direct calls: %+v", textID, calls)
	}
	if g.child.unmounts != 1 {
		t.Errorf("WillUnmount fired %d times, want 1", g.child.unmounts)
	}

	after := h.Runtime.Snapshot()
	if after.StatefulInstances != before.StatefulInstances-1 {
		t.Errorf("stateful instances %d -> %d, want one fewer", before.StatefulInstances, after.StatefulInstances)
	}
}

func TestInstanceIDsNeverReused(t *testing.T) {
	h := uitest.NewHarness(t)
	g := &toggler{show: reactive.NewSignal(true), child: newCounter()}
	h.Mount(t, vdom.Stateful(g))

	first := h.Runtime.Snapshot().Root.Rendered.Children[0].Children[0].InstanceID
	if first == "" {
		t.Fatal("mounted child has no instance ID")
	}

	g.show.Set(false)
	h.Flush(t)
	g.show.Set(true)
	h.Flush(t)

	second := h.Runtime.Snapshot().Root.Rendered.Children[0].Children[0].InstanceID
	if second == "" || second == first {
		t.Errorf("remounted instance ID = %q, want fresh ID distinct from %q", second, first)
	}
}

type faultyChild struct {
	armed *reactive.Signal[bool]
}

func (f *faultyChild) Render() *vdom.VNode {
	if f.armed.Get() {
		panic("corrupt state")
	}
	return vdom.El("Text", vdom.Props{"value": "fine"})
}

type guard struct {
	child  vdom.Component
	caught []error
}

func (g *guard) Render() *vdom.VNode {
	return vdom.El("Panel", nil, vdom.Stateful(g.child))
}

func (g *guard) CatchRenderError(err error) *vdom.VNode {
	g.caught = append(g.caught, err)
	return vdom.El("Fallback", vdom.Props{"reason": err.Error()})
}

func TestErrorBoundaryRecoversSubtree(t *testing.T) {
	h := uitest.NewHarness(t)
	child := &faultyChild{armed: reactive.NewSignal(false)}
	g := &guard{child: child}
	h.Mount(t, vdom.Stateful(g))

	h.Bridge.Reset()
	child.armed.Set(true)
	h.Flush(t)

	if len(g.caught) != 1 {
		t.Fatalf("boundary caught %d errors, want 1", len(g.caught))
	}
	if !strings.Contains(g.caught[0].Error(), "corrupt state") {
		t.Errorf("caught = %v, want the render panic", g.caught[0])
	}
	if n := h.Bridge.Commits(); n != 1 {
		t.Errorf("commits = %d, want 1 (recovered batch still commits)", n)
	}
	if n := h.Bridge.Count("CancelBatchUpdate"); n != 0 {
		t.Errorf("CancelBatchUpdate called %d times, want 0", n)
	}
	fallbackID := firstViewID(t, h.Bridge, "Fallback")
	if fallbackID == "" {
		t.Fatal("fallback subtree never mounted")
	}
}

func TestErrorBoundaryCatchesMountFailure(t *testing.T) {
	h := uitest.NewHarness(t)
	child := &faultyChild{armed: reactive.NewSignal(true)}
	g := &guard{child: child}
	h.Mount(t, vdom.Stateful(g))

	if len(g.caught) != 1 {
		t.Fatalf("boundary caught %d errors during mount, want 1", len(g.caught))
	}
	if firstViewID(t, h.Bridge, "Fallback") == "" {
		t.Fatal("fallback subtree never mounted")
	}
}
