package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/rivet-ui/rivet/pkg/bridge"
	"github.com/rivet-ui/rivet/pkg/reactive"
	"github.com/rivet-ui/rivet/pkg/vdom"
)

// DefaultRootContainerID is the native container the root tree attaches to
// unless Config overrides it.
const DefaultRootContainerID = "root"

// Config configures a Runtime.
type Config struct {
	// Bridge is the native bridge the runtime renders through. Required.
	Bridge bridge.NativeBridge

	// Logger receives runtime diagnostics. Defaults to slog.Default().
	Logger *slog.Logger

	// Registry receives the runtime's Prometheus collectors. Defaults to a
	// fresh registry so independent runtimes never collide.
	Registry *prometheus.Registry

	// Tracer emits one span per committed batch. Defaults to the global
	// otel tracer provider.
	Tracer trace.Tracer

	// RootContainerID overrides the native root container.
	RootContainerID string
}

// Runtime owns one component tree and drives it through a native bridge.
// All mutable tree state is runtime-scoped; independent runtimes share
// nothing.
type Runtime struct {
	bridge   bridge.NativeBridge
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics
	tracer   trace.Tracer

	sched       *scheduler
	viewIDs     idAllocator
	instanceIDs idAllocator

	initOnce    sync.Once
	initErr     error
	initialized atomic.Bool

	// mu guards the tree, the registries, and the native-view mirror.
	mu            sync.Mutex
	root          *vdom.VNode
	rootOwner     *reactive.Owner
	rootContainer string
	detached      []*vdom.VNode
	stateful      map[string]*Instance
	stateless     map[string]*Instance
	nodesByView   map[string]*vdom.VNode
	childOrder    map[string][]string
	containerOf   map[string]string
	portals       map[string]*portalTarget
	pendingHooks  []func()
}

var _ bridge.EventSink = (*Runtime)(nil)

// New creates a Runtime for the given bridge. The bridge is not touched
// until the first render entry point initializes it.
func New(cfg Config) *Runtime {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer("rivet/runtime")
	}
	if cfg.RootContainerID == "" {
		cfg.RootContainerID = DefaultRootContainerID
	}

	m := newMetrics(cfg.Registry)
	rt := &Runtime{
		bridge:        &instrumentedBridge{NativeBridge: cfg.Bridge, commands: m.commandsEmitted},
		logger:        cfg.Logger.With("component", "runtime"),
		registry:      cfg.Registry,
		metrics:       m,
		tracer:        cfg.Tracer,
		sched:         newScheduler(),
		viewIDs:       idAllocator{prefix: "v"},
		instanceIDs:   idAllocator{prefix: "c"},
		rootContainer: cfg.RootContainerID,
		stateful:      make(map[string]*Instance),
		stateless:     make(map[string]*Instance),
		nodesByView:   make(map[string]*vdom.VNode),
		childOrder:    make(map[string][]string),
		containerOf:   make(map[string]string),
		portals:       make(map[string]*portalTarget),
	}
	return rt
}

// Gatherer exposes the runtime's metric registry for scraping.
func (rt *Runtime) Gatherer() prometheus.Gatherer {
	return rt.registry
}

// ensureInitialized performs the one-time bridge handshake. Initialization
// failure is fatal: every later entry point returns the same error.
func (rt *Runtime) ensureInitialized(ctx context.Context) error {
	rt.initOnce.Do(func() {
		if err := rt.bridge.Initialize(ctx); err != nil {
			rt.initErr = fmt.Errorf("runtime: bridge init: %w", err)
			return
		}
		rt.initialized.Store(true)
	})
	return rt.initErr
}

// CreateRoot establishes or replaces the tree root. Replacing tears the
// previous tree down completely (including subtrees painted with
// RenderToNative) before mounting the new one, all within one transaction.
func (rt *Runtime) CreateRoot(ctx context.Context, node *vdom.VNode) error {
	if err := rt.ensureInitialized(ctx); err != nil {
		return err
	}

	ctx, span := rt.tracer.Start(ctx, "rivet.create_root")
	defer span.End()

	rt.mu.Lock()
	err := rt.createRootLocked(ctx, node)
	hooks := rt.takeHooksLocked()
	owner := rt.rootOwner
	rt.mu.Unlock()

	if err != nil {
		span.RecordError(err)
		rt.metrics.batchFailures.Inc()
		return err
	}
	rt.metrics.batchesTotal.Inc()

	rt.runHooks(hooks)
	if owner != nil {
		owner.RunPendingEffects()
	}
	return rt.Flush(ctx)
}

func (rt *Runtime) createRootLocked(ctx context.Context, node *vdom.VNode) error {
	if err := rt.bridge.StartBatchUpdate(); err != nil {
		return err
	}

	if rt.root != nil || len(rt.detached) > 0 {
		if err := rt.teardownLocked(); err != nil {
			_ = rt.bridge.CancelBatchUpdate()
			return fmt.Errorf("runtime: root teardown: %w", err)
		}
	}

	rt.rootOwner = reactive.NewOwner(nil)
	rt.root = node

	if _, err := rt.mountNodeLocked(node, rt.rootContainer, 0, rt.rootOwner); err != nil {
		if !rt.recoverRenderErrorLocked(err) {
			_ = rt.bridge.CancelBatchUpdate()
			rt.dropHooksLocked()
			return err
		}
	}

	if err := rt.bridge.CommitBatchUpdate(ctx); err != nil {
		rt.dropHooksLocked()
		rt.logger.Error("root mount commit failed", "error", err)
		return fmt.Errorf("runtime: commit root mount: %w", err)
	}
	rt.logger.Info("root mounted", "container", rt.rootContainer)
	return nil
}

func (rt *Runtime) teardownLocked() error {
	if rt.root != nil {
		if err := rt.unmountNodeLocked(rt.root, true); err != nil {
			return err
		}
		rt.root = nil
	}
	for _, sub := range rt.detached {
		if err := rt.unmountNodeLocked(sub, true); err != nil {
			return err
		}
	}
	rt.detached = nil
	if rt.rootOwner != nil {
		rt.rootOwner.Dispose()
		rt.rootOwner = nil
	}
	return nil
}

// RenderToNative first-paints a subtree under an existing native view (or
// the root container) in its own transaction. The subtree participates in
// event dispatch and scheduling but is torn down only by a later
// CreateRoot.
func (rt *Runtime) RenderToNative(ctx context.Context, node *vdom.VNode, parentID string, index int) error {
	if err := rt.ensureInitialized(ctx); err != nil {
		return err
	}

	rt.mu.Lock()
	err := rt.renderToNativeLocked(ctx, node, parentID, index)
	hooks := rt.takeHooksLocked()
	owner := rt.rootOwner
	rt.mu.Unlock()

	if err != nil {
		rt.metrics.batchFailures.Inc()
		return err
	}
	rt.metrics.batchesTotal.Inc()

	rt.runHooks(hooks)
	if owner != nil {
		owner.RunPendingEffects()
	}
	return rt.Flush(ctx)
}

func (rt *Runtime) renderToNativeLocked(ctx context.Context, node *vdom.VNode, parentID string, index int) error {
	if parentID != rt.rootContainer {
		if _, ok := rt.nodesByView[parentID]; !ok {
			return fmt.Errorf("%w: parent %s", ErrRootReplaced, parentID)
		}
	}
	if rt.rootOwner == nil {
		rt.rootOwner = reactive.NewOwner(nil)
	}

	if err := rt.bridge.StartBatchUpdate(); err != nil {
		return err
	}
	if _, err := rt.mountNodeLocked(node, parentID, index, rt.rootOwner); err != nil {
		if !rt.recoverRenderErrorLocked(err) {
			_ = rt.bridge.CancelBatchUpdate()
			rt.dropHooksLocked()
			return err
		}
	}
	if err := rt.bridge.CommitBatchUpdate(ctx); err != nil {
		rt.dropHooksLocked()
		return fmt.Errorf("runtime: commit subtree mount: %w", err)
	}
	rt.detached = append(rt.detached, node)
	return nil
}

// Flush drains the dirty queue, one batch per transaction, until nothing is
// pending. Instances dirtied by lifecycle hooks or deferred effects land in
// follow-up batches within the same call.
func (rt *Runtime) Flush(ctx context.Context) error {
	if !rt.initialized.Load() {
		return ErrBridgeNotInitialized
	}
	for {
		progressed, err := rt.flushOnce(ctx)
		if err != nil || !progressed {
			return err
		}
	}
}

func (rt *Runtime) flushOnce(ctx context.Context) (bool, error) {
	batch, err := rt.sched.begin()
	if err != nil {
		return false, err
	}
	if batch == nil {
		return false, nil
	}

	ctx, span := rt.tracer.Start(ctx, "rivet.flush_batch")
	defer span.End()
	start := time.Now()

	rt.mu.Lock()
	hooks, err := rt.renderBatchLocked(ctx, batch)
	owner := rt.rootOwner
	rt.mu.Unlock()
	rt.sched.finish()

	if err != nil {
		span.RecordError(err)
		rt.metrics.batchFailures.Inc()
		return false, err
	}
	rt.metrics.batchesTotal.Inc()
	rt.metrics.batchDuration.Observe(time.Since(start).Seconds())

	rt.runHooks(hooks)
	if owner != nil {
		owner.RunPendingEffects()
	}
	return true, nil
}

// renderBatchLocked re-renders every dirty instance of one batch inside a
// single bridge transaction. A render failure that no boundary absorbs
// cancels the transaction exactly once; a commit rejection fails the pass
// with no cancel, since the bridge already resolved the batch. Neither
// rolls back in-memory tree mutations already applied.
func (rt *Runtime) renderBatchLocked(ctx context.Context, batch []*Instance) ([]func(), error) {
	if err := rt.bridge.StartBatchUpdate(); err != nil {
		return nil, err
	}

	for _, in := range batch {
		if !in.mounted.Load() {
			in.dirty.Store(false)
			continue
		}
		// A parent's re-render earlier in this batch may have already
		// reconciled this instance.
		if !in.dirty.CompareAndSwap(true, false) {
			continue
		}
		if err := rt.rerenderInstanceLocked(in); err != nil {
			if rt.recoverRenderErrorLocked(err) {
				continue
			}
			_ = rt.bridge.CancelBatchUpdate()
			rt.dropHooksLocked()
			rt.logger.Error("render batch failed", "instance", in.id, "error", err)
			return nil, err
		}
	}

	if err := rt.bridge.CommitBatchUpdate(ctx); err != nil {
		rt.dropHooksLocked()
		rt.logger.Error("batch commit failed", "error", err)
		return nil, fmt.Errorf("runtime: commit batch: %w", err)
	}
	return rt.takeHooksLocked(), nil
}

// Run drives flushes from the scheduler's wakeup channel until ctx ends.
// Flush errors are logged, not fatal; the loop keeps serving later updates.
func (rt *Runtime) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-rt.sched.notify:
			if err := rt.Flush(ctx); err != nil {
				rt.logger.Error("scheduled flush failed", "error", err)
			}
		}
	}
}

// queueHookLocked defers a lifecycle notification until after the current
// transaction commits. Hooks of a cancelled batch are dropped.
func (rt *Runtime) queueHookLocked(fn func()) {
	rt.pendingHooks = append(rt.pendingHooks, fn)
}

func (rt *Runtime) takeHooksLocked() []func() {
	hooks := rt.pendingHooks
	rt.pendingHooks = nil
	return hooks
}

func (rt *Runtime) dropHooksLocked() {
	rt.pendingHooks = nil
}

func (rt *Runtime) runHooks(hooks []func()) {
	for _, fn := range hooks {
		if err := catchPanic(fn); err != nil {
			rt.logger.Error("lifecycle hook panicked", "error", err)
		}
	}
}

// invokeHookLocked runs a synchronous lifecycle notification in place,
// containing panics.
func (rt *Runtime) invokeHookLocked(instanceID, hook string, fn func()) {
	if err := catchPanic(fn); err != nil {
		rt.logger.Error("lifecycle hook panicked",
			"instance", instanceID, "hook", hook, "error", err)
	}
}
