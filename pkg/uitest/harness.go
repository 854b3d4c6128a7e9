package uitest

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/rivet-ui/rivet/pkg/runtime"
	"github.com/rivet-ui/rivet/pkg/vdom"
)

// Harness couples a RecordingBridge with a runtime whose logs are silenced,
// for synchronous test flows: mount, mutate, flush, assert on the recorded
// commands.
type Harness struct {
	Bridge  *RecordingBridge
	Runtime *runtime.Runtime
}

// NewHarness creates a harness with a fresh bridge and runtime.
func NewHarness(t *testing.T) *Harness {
	t.Helper()
	b := NewRecordingBridge()
	rt := runtime.New(runtime.Config{
		Bridge: b,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return &Harness{Bridge: b, Runtime: rt}
}

// Mount establishes node as the tree root, failing the test on error.
func (h *Harness) Mount(t *testing.T, node *vdom.VNode) {
	t.Helper()
	if err := h.Runtime.CreateRoot(context.Background(), node); err != nil {
		t.Fatalf("CreateRoot: %v", err)
	}
}

// Flush drains pending updates synchronously, failing the test on error.
func (h *Harness) Flush(t *testing.T) {
	t.Helper()
	if err := h.Runtime.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}
