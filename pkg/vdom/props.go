package vdom

import (
	"reflect"
	"sort"
	"strings"
)

// IsEventProp reports whether a prop key carries an event handler.
// Case-insensitive on the prefix to catch onPress, onpress, OnPress, etc.
func IsEventProp(key string) bool {
	return len(key) > 2 && strings.EqualFold(key[:2], "on")
}

// EventTypes returns the sorted set of event-handler prop keys on the node.
// The bridge registers listeners under these keys.
func (v *VNode) EventTypes() []string {
	if v == nil || v.Kind != KindElement || len(v.Props) == 0 {
		return nil
	}
	var types []string
	for key, val := range v.Props {
		if IsEventProp(key) && val != nil {
			types = append(types, key)
		}
	}
	sort.Strings(types)
	return types
}

// Handler returns the callback stored under the given prop key, or nil.
func (v *VNode) Handler(key string) any {
	if v == nil || v.Props == nil {
		return nil
	}
	val, ok := v.Props[key]
	if !ok || !IsEventProp(key) {
		return nil
	}
	return val
}

// PlainProps returns the node's props with event handlers stripped, for
// submission to the bridge. Handlers travel separately through
// AddEventListeners/RemoveEventListeners.
func PlainProps(props Props) map[string]any {
	if len(props) == 0 {
		return nil
	}
	out := make(map[string]any, len(props))
	for key, val := range props {
		if IsEventProp(key) {
			continue
		}
		out[key] = val
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ValueEqual compares two prop values for change detection. Functions are
// compared by identity, not content: a handler closure rebuilt on every
// render with the same code still counts as changed only if its pointer
// differs.
func ValueEqual(a, b any) bool {
	// Fast paths for the common primitive types
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	}

	ra := reflect.ValueOf(a)
	rb := reflect.ValueOf(b)
	if ra.Kind() == reflect.Func || rb.Kind() == reflect.Func {
		if ra.Kind() != rb.Kind() {
			return false
		}
		return ra.Pointer() == rb.Pointer()
	}

	return reflect.DeepEqual(a, b)
}

// PropsEqual compares two prop maps with ValueEqual semantics.
func PropsEqual(a, b Props) bool {
	if len(a) != len(b) {
		return false
	}
	for key, av := range a {
		bv, ok := b[key]
		if !ok || !ValueEqual(av, bv) {
			return false
		}
	}
	return true
}
