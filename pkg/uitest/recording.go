package uitest

import (
	"context"
	"errors"
	"sync"

	"github.com/rivet-ui/rivet/pkg/bridge"
)

// Call is one recorded bridge invocation. Only the fields relevant to the
// method are populated.
type Call struct {
	Method   string
	ViewID   string
	TypeTag  string
	Props    map[string]any
	ParentID string
	Index    int
	Children []string
	Events   []string
}

// RecordingBridge implements bridge.NativeBridge by recording calls.
// Transaction discipline is enforced: view commands outside an open batch
// and nested StartBatchUpdate calls fail, so a misbehaving caller surfaces
// in tests immediately.
type RecordingBridge struct {
	mu          sync.Mutex
	calls       []Call
	initialized bool
	inBatch     bool
	commits     int

	// InitErr, when set, fails Initialize.
	InitErr error

	commitErrs []error
	failMethod string
	failErr    error
}

var _ bridge.NativeBridge = (*RecordingBridge)(nil)

// NewRecordingBridge creates an empty recording bridge.
func NewRecordingBridge() *RecordingBridge {
	return &RecordingBridge{}
}

// ScriptCommitError queues an error for an upcoming CommitBatchUpdate.
// Each queued error fails exactly one commit, in order. A failed commit
// still closes the batch, mirroring the remote bridge.
func (b *RecordingBridge) ScriptCommitError(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.commitErrs = append(b.commitErrs, err)
}

// ScriptCommandError makes the next view command with the given method name
// fail once.
func (b *RecordingBridge) ScriptCommandError(method string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failMethod = method
	b.failErr = err
}

// Calls returns a copy of every recorded call, including transaction
// control calls.
func (b *RecordingBridge) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Call, len(b.calls))
	copy(out, b.calls)
	return out
}

// Methods returns just the method names, in call order.
func (b *RecordingBridge) Methods() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.calls))
	for i, c := range b.calls {
		out[i] = c.Method
	}
	return out
}

// CallsFor returns the recorded calls targeting one view.
func (b *RecordingBridge) CallsFor(viewID string) []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Call
	for _, c := range b.calls {
		if c.ViewID == viewID {
			out = append(out, c)
		}
	}
	return out
}

// Count returns how many recorded calls use the given method.
func (b *RecordingBridge) Count(method string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Commits returns the number of committed batches.
func (b *RecordingBridge) Commits() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.commits
}

// LastBatch returns the view commands of the most recent batch, committed
// or not, without the transaction control calls.
func (b *RecordingBridge) LastBatch() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	start := -1
	for i, c := range b.calls {
		if c.Method == "StartBatchUpdate" {
			start = i
		}
	}
	if start < 0 {
		return nil
	}
	var out []Call
	for _, c := range b.calls[start+1:] {
		switch c.Method {
		case "CommitBatchUpdate", "CancelBatchUpdate":
			return out
		default:
			out = append(out, c)
		}
	}
	return out
}

// Reset clears recorded calls. Scripted failures and transaction state are
// untouched.
func (b *RecordingBridge) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = nil
	b.commits = 0
}

func (b *RecordingBridge) record(c Call) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.inBatch {
		return errors.New("uitest: view command outside batch: " + c.Method)
	}
	if b.failMethod == c.Method && b.failErr != nil {
		err := b.failErr
		b.failMethod = ""
		b.failErr = nil
		return err
	}
	b.calls = append(b.calls, c)
	return nil
}

// Initialize implements bridge.NativeBridge.
func (b *RecordingBridge) Initialize(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.InitErr != nil {
		return b.InitErr
	}
	b.initialized = true
	b.calls = append(b.calls, Call{Method: "Initialize"})
	return nil
}

// StartBatchUpdate implements bridge.NativeBridge.
func (b *RecordingBridge) StartBatchUpdate() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return errors.New("uitest: not initialized")
	}
	if b.inBatch {
		return errors.New("uitest: batch already open")
	}
	b.inBatch = true
	b.calls = append(b.calls, Call{Method: "StartBatchUpdate"})
	return nil
}

// CommitBatchUpdate implements bridge.NativeBridge. A scripted error fails
// the commit but still closes the batch.
func (b *RecordingBridge) CommitBatchUpdate(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.inBatch {
		return errors.New("uitest: no open batch")
	}
	b.inBatch = false
	b.calls = append(b.calls, Call{Method: "CommitBatchUpdate"})
	if len(b.commitErrs) > 0 {
		err := b.commitErrs[0]
		b.commitErrs = b.commitErrs[1:]
		return err
	}
	b.commits++
	return nil
}

// CancelBatchUpdate implements bridge.NativeBridge.
func (b *RecordingBridge) CancelBatchUpdate() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.inBatch {
		return errors.New("uitest: no open batch")
	}
	b.inBatch = false
	b.calls = append(b.calls, Call{Method: "CancelBatchUpdate"})
	return nil
}

// CreateView implements bridge.NativeBridge.
func (b *RecordingBridge) CreateView(id, typeTag string, props map[string]any) error {
	return b.record(Call{Method: "CreateView", ViewID: id, TypeTag: typeTag, Props: props})
}

// UpdateView implements bridge.NativeBridge.
func (b *RecordingBridge) UpdateView(id string, changedProps map[string]any) error {
	return b.record(Call{Method: "UpdateView", ViewID: id, Props: changedProps})
}

// DeleteView implements bridge.NativeBridge.
func (b *RecordingBridge) DeleteView(id string) error {
	return b.record(Call{Method: "DeleteView", ViewID: id})
}

// AttachView implements bridge.NativeBridge.
func (b *RecordingBridge) AttachView(id, parentID string, index int) error {
	return b.record(Call{Method: "AttachView", ViewID: id, ParentID: parentID, Index: index})
}

// DetachView implements bridge.NativeBridge.
func (b *RecordingBridge) DetachView(id string) error {
	return b.record(Call{Method: "DetachView", ViewID: id})
}

// SetChildren implements bridge.NativeBridge.
func (b *RecordingBridge) SetChildren(id string, orderedChildIDs []string) error {
	return b.record(Call{Method: "SetChildren", ViewID: id, Children: orderedChildIDs})
}

// AddEventListeners implements bridge.NativeBridge.
func (b *RecordingBridge) AddEventListeners(id string, types []string) error {
	return b.record(Call{Method: "AddEventListeners", ViewID: id, Events: types})
}

// RemoveEventListeners implements bridge.NativeBridge.
func (b *RecordingBridge) RemoveEventListeners(id string, types []string) error {
	return b.record(Call{Method: "RemoveEventListeners", ViewID: id, Events: types})
}
