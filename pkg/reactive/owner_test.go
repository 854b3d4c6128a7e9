package reactive

import "testing"

func TestOwnerHierarchy(t *testing.T) {
	root := NewOwner(nil)
	child := NewOwner(root)

	if child.Parent() != root {
		t.Error("child.Parent() != root")
	}
	if root.Parent() != nil {
		t.Error("root.Parent() should be nil")
	}
}

func TestOwnerDisposeCascades(t *testing.T) {
	root := NewOwner(nil)
	child := NewOwner(root)
	grandchild := NewOwner(child)

	root.Dispose()

	if !child.IsDisposed() || !grandchild.IsDisposed() {
		t.Error("disposal must cascade to descendants")
	}
}

func TestOwnerDisposeIdempotent(t *testing.T) {
	o := NewOwner(nil)
	runs := 0
	o.OnCleanup(func() { runs++ })

	o.Dispose()
	o.Dispose()

	if runs != 1 {
		t.Errorf("cleanup ran %d times, want 1", runs)
	}
}

func TestOnCleanupReverseOrder(t *testing.T) {
	o := NewOwner(nil)
	var order []int
	o.OnCleanup(func() { order = append(order, 1) })
	o.OnCleanup(func() { order = append(order, 2) })

	o.Dispose()

	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Errorf("cleanup order = %v, want [2 1]", order)
	}
}

func TestOnCleanupAfterDisposeRunsImmediately(t *testing.T) {
	o := NewOwner(nil)
	o.Dispose()

	ran := false
	o.OnCleanup(func() { ran = true })
	if !ran {
		t.Error("cleanup registered after disposal must run immediately")
	}
}

func TestEffectDeferredUntilRunPendingEffects(t *testing.T) {
	o := NewOwner(nil)
	defer o.Dispose()

	runs := 0
	WithOwner(o, func() {
		CreateEffect(func() Cleanup {
			runs++
			return nil
		})
	})

	if runs != 0 {
		t.Fatalf("effect ran %d times before RunPendingEffects, want 0", runs)
	}
	if !o.HasPendingEffects() {
		t.Fatal("HasPendingEffects() = false, want true")
	}

	o.RunPendingEffects()
	if runs != 1 {
		t.Errorf("effect ran %d times, want 1", runs)
	}
	if o.HasPendingEffects() {
		t.Error("HasPendingEffects() = true after drain")
	}
}

func TestEffectRerunsOnDependencyChange(t *testing.T) {
	o := NewOwner(nil)
	defer o.Dispose()

	s := NewSignal(0)
	var seen []int
	WithOwner(o, func() {
		CreateEffect(func() Cleanup {
			seen = append(seen, s.Get())
			return nil
		})
	})
	o.RunPendingEffects()

	s.Set(7)
	o.RunPendingEffects()

	if len(seen) != 2 || seen[0] != 0 || seen[1] != 7 {
		t.Errorf("seen = %v, want [0 7]", seen)
	}
}

func TestEffectCleanupBeforeRerunAndOnDispose(t *testing.T) {
	o := NewOwner(nil)
	s := NewSignal(0)
	cleanups := 0

	WithOwner(o, func() {
		CreateEffect(func() Cleanup {
			_ = s.Get()
			return func() { cleanups++ }
		})
	})
	o.RunPendingEffects()

	s.Set(1)
	o.RunPendingEffects()
	if cleanups != 1 {
		t.Errorf("cleanups = %d before dispose, want 1", cleanups)
	}

	o.Dispose()
	if cleanups != 2 {
		t.Errorf("cleanups = %d after dispose, want 2", cleanups)
	}
}

func TestEffectStopsAfterDispose(t *testing.T) {
	o := NewOwner(nil)
	s := NewSignal(0)
	runs := 0

	WithOwner(o, func() {
		CreateEffect(func() Cleanup {
			_ = s.Get()
			runs++
			return nil
		})
	})
	o.RunPendingEffects()
	o.Dispose()

	s.Set(5)
	o.RunPendingEffects()
	if runs != 1 {
		t.Errorf("runs = %d after dispose, want 1", runs)
	}
}

func TestChildPendingEffectsRun(t *testing.T) {
	root := NewOwner(nil)
	defer root.Dispose()
	child := NewOwner(root)

	runs := 0
	WithOwner(child, func() {
		CreateEffect(func() Cleanup {
			runs++
			return nil
		})
	})

	root.RunPendingEffects()
	if runs != 1 {
		t.Errorf("child effect ran %d times via root drain, want 1", runs)
	}
}

func TestOnMountRunsOnce(t *testing.T) {
	o := NewOwner(nil)
	defer o.Dispose()

	s := NewSignal(0)
	mounts := 0
	WithOwner(o, func() {
		CreateEffect(func() Cleanup {
			_ = s.Get()
			return nil
		})
		OnMount(func() { mounts++ })
	})

	o.RunPendingEffects()
	s.Set(1)
	o.RunPendingEffects()

	if mounts != 1 {
		t.Errorf("mounts = %d, want 1", mounts)
	}
}

func TestOnUnmount(t *testing.T) {
	o := NewOwner(nil)
	ran := false
	WithOwner(o, func() {
		OnUnmount(func() { ran = true })
	})

	o.Dispose()
	if !ran {
		t.Error("OnUnmount callback did not run on disposal")
	}
}
