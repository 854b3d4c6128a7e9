package inspect_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rivet-ui/rivet/pkg/inspect"
	"github.com/rivet-ui/rivet/pkg/runtime"
	"github.com/rivet-ui/rivet/pkg/uitest"
	"github.com/rivet-ui/rivet/pkg/vdom"
)

func startInspector(t *testing.T) (*uitest.Harness, *httptest.Server) {
	t.Helper()
	h := uitest.NewHarness(t)
	h.Mount(t, vdom.El("View", vdom.Props{"w": 100},
		vdom.El("Text", vdom.Props{"value": "hi"}),
	))
	srv := httptest.NewServer(inspect.Handler(h.Runtime, nil))
	t.Cleanup(srv.Close)
	return h, srv
}

func TestTreeEndpoint(t *testing.T) {
	_, srv := startInspector(t)

	resp, err := http.Get(srv.URL + "/debug/tree")
	if err != nil {
		t.Fatalf("GET /debug/tree: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var snap runtime.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.Root == nil || snap.Root.Kind != "Element" || snap.Root.Type != "View" {
		t.Fatalf("root = %+v, want the mounted View element", snap.Root)
	}
	if len(snap.Root.Children) != 1 || snap.Root.Children[0].Type != "Text" {
		t.Errorf("children = %+v, want one Text child", snap.Root.Children)
	}
	if snap.Root.NativeID == "" {
		t.Error("mounted root has no native ID in snapshot")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	_, srv := startInspector(t)

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), "rivet_runtime_batches_total") {
		t.Error("metrics output missing rivet_runtime_batches_total")
	}
	if !strings.Contains(string(body), "rivet_runtime_commands_total") {
		t.Error("metrics output missing rivet_runtime_commands_total")
	}
}

func TestHealthz(t *testing.T) {
	_, srv := startInspector(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
