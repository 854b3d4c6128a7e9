package runtime

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivet-ui/rivet/pkg/bridge"
	"github.com/rivet-ui/rivet/pkg/vdom"
)

// DispatchNativeEvent routes an inbound native event to the handler prop of
// the view's node and flushes any updates the handler triggered. A failing
// handler is logged and never disturbs later events. Implements
// bridge.EventSink.
func (rt *Runtime) DispatchNativeEvent(ev bridge.NativeEvent) {
	rt.metrics.eventsDispatched.Inc()

	rt.mu.Lock()
	node := rt.nodesByView[ev.ViewID]
	var handler any
	if node != nil {
		handler = resolveHandler(node, ev.Type)
	}
	rt.mu.Unlock()

	if node == nil {
		rt.logger.Debug("event for unknown view", "view", ev.ViewID, "type", ev.Type)
		return
	}
	if handler == nil {
		rt.logger.Debug("event without handler",
			"view", ev.ViewID, "type", ev.Type, "error", ErrNoHandler)
		return
	}

	if err := invokeHandler(handler, ev); err != nil {
		rt.logger.Error("event handler failed",
			"view", ev.ViewID, "type", ev.Type, "error", err)
	}

	if err := rt.Flush(context.Background()); err != nil {
		rt.logger.Error("flush after event failed", "error", err)
	}
}

// resolveHandler finds the handler prop for an event type, trying the
// casing conventions hosts use: the raw type as sent, then on-prefixed
// variants ("press" matches onPress, onpress, and an exact "onPress").
func resolveHandler(node *vdom.VNode, eventType string) any {
	for _, key := range handlerKeyCandidates(eventType) {
		if h := node.Handler(key); h != nil {
			return h
		}
	}
	return nil
}

func handlerKeyCandidates(eventType string) []string {
	lower := strings.ToLower(eventType)
	candidates := []string{
		eventType,
		"on" + capitalize(eventType),
		"on" + capitalize(lower),
		"on" + eventType,
		"on" + lower,
	}
	out := candidates[:0]
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// invokeHandler calls a handler prop, adapting to the supported callback
// shapes. Panics are contained per event.
func invokeHandler(h any, ev bridge.NativeEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	switch fn := h.(type) {
	case func():
		fn()
	case func(map[string]any):
		fn(ev.Payload)
	case func(bridge.NativeEvent):
		fn(ev)
	default:
		return fmt.Errorf("runtime: unsupported handler type %T", h)
	}
	return nil
}
