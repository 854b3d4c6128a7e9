package runtime_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rivet-ui/rivet/pkg/bridge"
	"github.com/rivet-ui/rivet/pkg/reactive"
	"github.com/rivet-ui/rivet/pkg/runtime"
	"github.com/rivet-ui/rivet/pkg/uitest"
	"github.com/rivet-ui/rivet/pkg/vdom"
)

type presser struct {
	count *reactive.Signal[int]
}

func (p *presser) Render() *vdom.VNode {
	return vdom.El("Button", vdom.Props{
		"label": p.count.Get(),
		"onPress": func() {
			p.count.Update(func(n int) int { return n + 1 })
		},
	})
}

func TestEventDispatchInvokesHandlerAndFlushes(t *testing.T) {
	h := uitest.NewHarness(t)
	p := &presser{count: reactive.NewSignal(0)}
	h.Mount(t, vdom.Stateful(p))
	buttonID := firstViewID(t, h.Bridge, "Button")

	// Mount registers the handler key with the host.
	var listeners []string
	for _, c := range h.Bridge.CallsFor(buttonID) {
		if c.Method == "AddEventListeners" {
			listeners = c.Events
		}
	}
	if len(listeners) != 1 || listeners[0] != "onPress" {
		t.Fatalf("registered listeners = %v, want [onPress]", listeners)
	}

	h.Bridge.Reset()
	h.Runtime.DispatchNativeEvent(bridge.NativeEvent{ViewID: buttonID, Type: "press"})

	if got := p.count.Peek(); got != 1 {
		t.Fatalf("count after press = %d, want 1", got)
	}
	if n := h.Bridge.Count("UpdateView"); n != 1 {
		t.Errorf("UpdateView called %d times (dispatch must flush), want 1", n)
	}
}

func TestEventDispatchCasingConventions(t *testing.T) {
	cases := []string{"press", "Press", "onPress", "PRESS"}
	for _, eventType := range cases {
		t.Run(eventType, func(t *testing.T) {
			h := uitest.NewHarness(t)
			fired := 0
			h.Mount(t, vdom.El("Button", vdom.Props{
				"onPress": func() { fired++ },
			}))
			buttonID := firstViewID(t, h.Bridge, "Button")

			h.Runtime.DispatchNativeEvent(bridge.NativeEvent{ViewID: buttonID, Type: eventType})
			if fired != 1 {
				t.Errorf("handler fired %d times for type %q, want 1", fired, eventType)
			}
		})
	}
}

func TestEventDispatchPayloadShapes(t *testing.T) {
	h := uitest.NewHarness(t)
	var gotPayload map[string]any
	var gotEvent bridge.NativeEvent
	h.Mount(t, vdom.El("Canvas", vdom.Props{
		"onTap":  func(p map[string]any) { gotPayload = p },
		"onDraw": func(ev bridge.NativeEvent) { gotEvent = ev },
	}))
	canvasID := firstViewID(t, h.Bridge, "Canvas")

	h.Runtime.DispatchNativeEvent(bridge.NativeEvent{
		ViewID:  canvasID,
		Type:    "tap",
		Payload: map[string]any{"x": int64(4)},
	})
	if gotPayload == nil || gotPayload["x"] != int64(4) {
		t.Errorf("payload = %v, want x=4", gotPayload)
	}

	h.Runtime.DispatchNativeEvent(bridge.NativeEvent{ViewID: canvasID, Type: "draw", Seq: 7})
	if gotEvent.Seq != 7 || gotEvent.Type != "draw" {
		t.Errorf("event = %+v, want draw/seq 7", gotEvent)
	}
}

func TestEventDispatchFailureIsContained(t *testing.T) {
	h := uitest.NewHarness(t)
	fired := 0
	h.Mount(t, vdom.El("View", nil,
		vdom.El("Button", vdom.Props{"onPress": func() { panic("handler bug") }}),
		vdom.El("Button", vdom.Props{"onPress": func() { fired++ }}),
	))

	var buttons []string
	for _, c := range h.Bridge.Calls() {
		if c.Method == "CreateView" && c.TypeTag == "Button" {
			buttons = append(buttons, c.ViewID)
		}
	}
	if len(buttons) != 2 {
		t.Fatalf("mounted %d buttons, want 2", len(buttons))
	}

	h.Runtime.DispatchNativeEvent(bridge.NativeEvent{ViewID: buttons[0], Type: "press"})
	h.Runtime.DispatchNativeEvent(bridge.NativeEvent{ViewID: buttons[1], Type: "press"})
	if fired != 1 {
		t.Errorf("second handler fired %d times after first panicked, want 1", fired)
	}
}

func TestEventForUnknownViewIsIgnored(t *testing.T) {
	h := uitest.NewHarness(t)
	h.Mount(t, vdom.El("View", nil))
	// Must not panic or emit bridge traffic.
	h.Bridge.Reset()
	h.Runtime.DispatchNativeEvent(bridge.NativeEvent{ViewID: "v999", Type: "press"})
	if n := len(h.Bridge.Calls()); n != 0 {
		t.Errorf("unknown-view event emitted %d bridge calls, want 0", n)
	}
}

type listenerToggler struct {
	on *reactive.Signal[bool]
}

func (l *listenerToggler) Render() *vdom.VNode {
	props := vdom.Props{"value": "x"}
	if l.on.Get() {
		props["onTap"] = func() {}
	}
	return vdom.El("Text", props)
}

func TestListenerSetDiff(t *testing.T) {
	h := uitest.NewHarness(t)
	l := &listenerToggler{on: reactive.NewSignal(true)}
	h.Mount(t, vdom.Stateful(l))
	textID := firstViewID(t, h.Bridge, "Text")

	h.Bridge.Reset()
	l.on.Set(false)
	h.Flush(t)
	calls := h.Bridge.CallsFor(textID)
	if len(calls) != 1 || calls[0].Method != "RemoveEventListeners" {
		t.Fatalf("calls = %+v, want one RemoveEventListeners", calls)
	}
	if len(calls[0].Events) != 1 || calls[0].Events[0] != "onTap" {
		t.Errorf("removed = %v, want [onTap]", calls[0].Events)
	}

	h.Bridge.Reset()
	l.on.Set(true)
	h.Flush(t)
	calls = h.Bridge.CallsFor(textID)
	if len(calls) != 1 || calls[0].Method != "AddEventListeners" {
		t.Fatalf("calls = %+v, want one AddEventListeners", calls)
	}
}

func TestPortalRendersIntoTarget(t *testing.T) {
	h := uitest.NewHarness(t)
	h.Mount(t, vdom.El("View", nil,
		vdom.El("Overlay", nil, vdom.Target("modal")),
		vdom.El("Content", nil,
			vdom.Portal("modal", vdom.El("Dialog", vdom.Props{"title": "hi"})),
		),
	))

	overlayID := firstViewID(t, h.Bridge, "Overlay")
	dialogID := firstViewID(t, h.Bridge, "Dialog")

	var attach *uitest.Call
	for _, c := range h.Bridge.CallsFor(dialogID) {
		if c.Method == "AttachView" {
			c := c
			attach = &c
		}
	}
	if attach == nil {
		t.Fatal("dialog never attached")
	}
	if attach.ParentID != overlayID {
		t.Errorf("dialog attached to %s, want portal target container %s", attach.ParentID, overlayID)
	}
}

func TestPortalWithoutTargetFails(t *testing.T) {
	h := uitest.NewHarness(t)
	err := h.Runtime.CreateRoot(context.Background(), vdom.El("View", nil,
		vdom.Portal("missing", vdom.El("Dialog", nil)),
	))
	if !errors.Is(err, runtime.ErrNoPortalTarget) {
		t.Fatalf("CreateRoot = %v, want ErrNoPortalTarget", err)
	}
	if n := h.Bridge.Count("CancelBatchUpdate"); n != 1 {
		t.Errorf("CancelBatchUpdate called %d times, want 1", n)
	}
	if n := h.Bridge.Commits(); n != 0 {
		t.Errorf("commits = %d, want 0", n)
	}
}

type portalToggler struct {
	open *reactive.Signal[bool]
}

func (p *portalToggler) Render() *vdom.VNode {
	var modal *vdom.VNode
	if p.open.Get() {
		modal = vdom.Portal("modal", vdom.El("Dialog", nil))
	} else {
		modal = vdom.Empty()
	}
	return vdom.El("View", nil,
		vdom.El("Overlay", nil, vdom.Target("modal")),
		vdom.El("Content", nil, modal),
	)
}

func TestPortalContentUnmountsWithPlaceholder(t *testing.T) {
	h := uitest.NewHarness(t)
	p := &portalToggler{open: reactive.NewSignal(true)}
	h.Mount(t, vdom.Stateful(p))
	dialogID := firstViewID(t, h.Bridge, "Dialog")

	h.Bridge.Reset()
	p.open.Set(false)
	h.Flush(t)

	calls := h.Bridge.CallsFor(dialogID)
	if len(calls) != 1 || calls[0].Method != "DeleteView" {
		t.Errorf("dialog calls = %+v, want one DeleteView", calls)
	}
}
