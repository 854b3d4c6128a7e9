package bridge

// CommandOp identifies a view mutation inside a batch.
type CommandOp uint8

const (
	OpCreateView      CommandOp = 0x01
	OpUpdateView      CommandOp = 0x02
	OpDeleteView      CommandOp = 0x03
	OpAttachView      CommandOp = 0x04
	OpDetachView      CommandOp = 0x05
	OpSetChildren     CommandOp = 0x06
	OpAddListeners    CommandOp = 0x07
	OpRemoveListeners CommandOp = 0x08
)

// String returns the string representation of the CommandOp.
func (op CommandOp) String() string {
	switch op {
	case OpCreateView:
		return "CreateView"
	case OpUpdateView:
		return "UpdateView"
	case OpDeleteView:
		return "DeleteView"
	case OpAttachView:
		return "AttachView"
	case OpDetachView:
		return "DetachView"
	case OpSetChildren:
		return "SetChildren"
	case OpAddListeners:
		return "AddListeners"
	case OpRemoveListeners:
		return "RemoveListeners"
	default:
		return "Unknown"
	}
}

// Command is a single view mutation. Which fields are meaningful depends
// on Op; unused fields stay zero.
type Command struct {
	Op       CommandOp
	ViewID   string
	TypeTag  string         // CreateView
	Props    map[string]any // CreateView (full set), UpdateView (diff, nil = removal)
	ParentID string         // AttachView
	Index    int            // AttachView
	Children []string       // SetChildren
	Events   []string       // AddListeners / RemoveListeners
}

// BatchFrame is one committed transaction: an ordered command list with a
// sequence number. Batches are strictly sequential; the host applies frame
// N+1 only after frame N.
type BatchFrame struct {
	Seq      uint64
	Commands []Command
}
