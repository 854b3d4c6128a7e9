package bridge

import "context"

// NativeBridge is the transactional mutation protocol the reconciler
// drives. Implementations are provided by the platform layer; the runtime
// only ever calls view operations between StartBatchUpdate and a matching
// CommitBatchUpdate or CancelBatchUpdate.
//
// UpdateView receives only the changed prop subset; a nil value signals
// property removal. Event listeners travel separately through
// AddEventListeners/RemoveEventListeners so hosts can maintain their
// dispatch tables independently of generic prop storage.
type NativeBridge interface {
	// Initialize performs the one-time host handshake. All other
	// operations are invalid until it returns nil.
	Initialize(ctx context.Context) error

	CreateView(id, typeTag string, props map[string]any) error
	UpdateView(id string, changedProps map[string]any) error
	DeleteView(id string) error

	AttachView(id, parentID string, index int) error
	DetachView(id string) error
	SetChildren(id string, orderedChildIDs []string) error

	AddEventListeners(id string, types []string) error
	RemoveEventListeners(id string, types []string) error

	// StartBatchUpdate opens a transaction. CommitBatchUpdate applies it
	// atomically on the native side; CancelBatchUpdate discards it.
	StartBatchUpdate() error
	CommitBatchUpdate(ctx context.Context) error
	CancelBatchUpdate() error
}

// NativeEvent is an inbound event delivered by the host: a native view
// raised eventType with the given payload. The runtime resolves ViewID to
// a node and invokes the matching handler prop.
type NativeEvent struct {
	ViewID  string
	Type    string
	Payload map[string]any
	Seq     uint64
}

// EventSink receives inbound native events. The runtime implements it;
// bridge transports call it from their read loops.
type EventSink interface {
	DispatchNativeEvent(ev NativeEvent)
}
