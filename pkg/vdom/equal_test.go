package vdom

import "testing"

func TestEqualIdenticalTrees(t *testing.T) {
	build := func() *VNode {
		return El("View", Props{"width": 10},
			El("Text", Props{"value": "hi"}),
			Frag(El("Image", Props{"src": "a.png"})),
		)
	}
	if !Equal(build(), build()) {
		t.Error("structurally identical trees must compare equal")
	}
}

func TestEqualIgnoresBookkeeping(t *testing.T) {
	a := El("View", nil)
	b := El("View", nil)
	a.NativeID = "v1"
	b.NativeID = "v99"
	if !Equal(a, b) {
		t.Error("native identity must not affect structural equality")
	}
}

func TestEqualDetectsDifferences(t *testing.T) {
	base := El("View", Props{"width": 10})

	cases := map[string]*VNode{
		"kind":     Frag(),
		"type":     El("Text", Props{"width": 10}),
		"key":      El("View", Props{"width": 10}).Keyed("k"),
		"props":    El("View", Props{"width": 20}),
		"children": El("View", Props{"width": 10}, El("Text", nil)),
	}
	for name, other := range cases {
		if Equal(base, other) {
			t.Errorf("%s difference not detected", name)
		}
	}
}

func TestEqualNil(t *testing.T) {
	if !Equal(nil, nil) {
		t.Error("nil trees compare equal")
	}
	if Equal(nil, El("View", nil)) || Equal(El("View", nil), nil) {
		t.Error("nil vs non-nil must compare unequal")
	}
}

func TestEqualStatelessByRenderIdentity(t *testing.T) {
	render := func(Props) *VNode { return El("Text", nil) }
	other := func(Props) *VNode { return El("Text", nil) }

	a := Stateless(render, Props{"n": 1})
	b := Stateless(render, Props{"n": 1})
	c := Stateless(other, Props{"n": 1})
	d := Stateless(render, Props{"n": 2})

	if !Equal(a, b) {
		t.Error("same render func and props must compare equal")
	}
	if Equal(a, c) {
		t.Error("different render funcs must compare unequal")
	}
	if Equal(a, d) {
		t.Error("different props must compare unequal")
	}
}

func TestEqualStatefulByComponentIdentity(t *testing.T) {
	first := &staticComp{}
	second := &staticComp{}

	if !Equal(Stateful(first), Stateful(first)) {
		t.Error("same component value must compare equal")
	}
	if Equal(Stateful(first), Stateful(second)) {
		t.Error("distinct component values must compare unequal")
	}
}

func TestEqualPortalTagging(t *testing.T) {
	if Equal(Portal("overlay"), Frag()) {
		t.Error("portal placeholder vs plain fragment must compare unequal")
	}
	if Equal(Portal("overlay"), Portal("sheet")) {
		t.Error("placeholders naming different targets must compare unequal")
	}
	if !Equal(Target("overlay"), Target("overlay")) {
		t.Error("identical targets must compare equal")
	}
}

type staticComp struct{}

func (*staticComp) Render() *VNode { return El("View", nil) }
