package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Remote bridge errors.
var (
	ErrNotInitialized = errors.New("bridge: not initialized")
	ErrNoOpenBatch    = errors.New("bridge: no open batch")
	ErrBatchOpen      = errors.New("bridge: batch already open")
	ErrClosed         = errors.New("bridge: connection closed")
)

// handshakeSeq is the reserved sequence number for the Init/Ack exchange.
const handshakeSeq = 0

// RemoteBridgeConfig configures a RemoteBridge.
type RemoteBridgeConfig struct {
	// URL is the websocket endpoint of the native host.
	URL string

	// Sink receives inbound native events. Required for event delivery;
	// may be nil for hosts that never raise events.
	Sink EventSink

	// Dialer overrides the default websocket dialer.
	Dialer *websocket.Dialer

	// Logger receives connection and dispatch diagnostics.
	// Defaults to slog.Default().
	Logger *slog.Logger

	// WriteTimeout bounds each frame write. Default 10s.
	WriteTimeout time.Duration

	// PingInterval is the keepalive ping cadence. Default 30s.
	PingInterval time.Duration
}

// RemoteBridge implements NativeBridge over a websocket connection to a
// native host process. View operations buffer locally between
// StartBatchUpdate and CommitBatchUpdate; commit encodes the batch as one
// binary frame and awaits the host's ack, so a cancelled batch never
// reaches the host at all.
type RemoteBridge struct {
	cfg    RemoteBridgeConfig
	logger *slog.Logger

	conn    *websocket.Conn
	writeMu sync.Mutex

	mu      sync.Mutex
	inBatch bool
	pending []Command

	seq atomic.Uint64

	ackMu sync.Mutex
	acks  map[uint64]chan error

	initialized atomic.Bool
	closed      chan struct{}
	closeOnce   sync.Once
}

var _ NativeBridge = (*RemoteBridge)(nil)

// NewRemoteBridge creates an unconnected RemoteBridge. Call Initialize to
// dial and perform the handshake.
func NewRemoteBridge(cfg RemoteBridgeConfig) *RemoteBridge {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.PingInterval == 0 {
		cfg.PingInterval = 30 * time.Second
	}
	return &RemoteBridge{
		cfg:    cfg,
		logger: cfg.Logger.With("component", "bridge"),
		acks:   make(map[uint64]chan error),
		closed: make(chan struct{}),
	}
}

// Initialize dials the host and performs the one-time handshake. It blocks
// until the host acknowledges or ctx expires.
func (b *RemoteBridge) Initialize(ctx context.Context) error {
	dialer := b.cfg.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	conn, _, err := dialer.DialContext(ctx, b.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("bridge: dial %s: %w", b.cfg.URL, err)
	}
	b.conn = conn

	ack := b.registerAck(handshakeSeq)
	go b.readLoop()
	go b.pingLoop()

	if err := b.writeFrame(EncodeInit()); err != nil {
		return err
	}

	select {
	case err := <-ack:
		if err != nil {
			return fmt.Errorf("bridge: handshake rejected: %w", err)
		}
		b.initialized.Store(true)
		b.logger.Info("bridge initialized", "url", b.cfg.URL)
		return nil
	case <-b.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CreateView buffers a create command for the open batch.
func (b *RemoteBridge) CreateView(id, typeTag string, props map[string]any) error {
	return b.buffer(Command{Op: OpCreateView, ViewID: id, TypeTag: typeTag, Props: props})
}

// UpdateView buffers an update command carrying only the changed subset.
func (b *RemoteBridge) UpdateView(id string, changedProps map[string]any) error {
	return b.buffer(Command{Op: OpUpdateView, ViewID: id, Props: changedProps})
}

// DeleteView buffers a delete command.
func (b *RemoteBridge) DeleteView(id string) error {
	return b.buffer(Command{Op: OpDeleteView, ViewID: id})
}

// AttachView buffers an attach at the given index.
func (b *RemoteBridge) AttachView(id, parentID string, index int) error {
	return b.buffer(Command{Op: OpAttachView, ViewID: id, ParentID: parentID, Index: index})
}

// DetachView buffers a detach command.
func (b *RemoteBridge) DetachView(id string) error {
	return b.buffer(Command{Op: OpDetachView, ViewID: id})
}

// SetChildren buffers a full child-order resubmission.
func (b *RemoteBridge) SetChildren(id string, orderedChildIDs []string) error {
	return b.buffer(Command{Op: OpSetChildren, ViewID: id, Children: orderedChildIDs})
}

// AddEventListeners buffers listener registration.
func (b *RemoteBridge) AddEventListeners(id string, types []string) error {
	return b.buffer(Command{Op: OpAddListeners, ViewID: id, Events: types})
}

// RemoveEventListeners buffers listener removal.
func (b *RemoteBridge) RemoveEventListeners(id string, types []string) error {
	return b.buffer(Command{Op: OpRemoveListeners, ViewID: id, Events: types})
}

// StartBatchUpdate opens a transaction.
func (b *RemoteBridge) StartBatchUpdate() error {
	if !b.initialized.Load() {
		return ErrNotInitialized
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inBatch {
		return ErrBatchOpen
	}
	b.inBatch = true
	b.pending = b.pending[:0]
	return nil
}

// CommitBatchUpdate sends the buffered batch as one frame and waits for
// the host to apply it.
func (b *RemoteBridge) CommitBatchUpdate(ctx context.Context) error {
	b.mu.Lock()
	if !b.inBatch {
		b.mu.Unlock()
		return ErrNoOpenBatch
	}
	commands := make([]Command, len(b.pending))
	copy(commands, b.pending)
	b.inBatch = false
	b.pending = b.pending[:0]
	b.mu.Unlock()

	seq := b.seq.Add(1)
	frame, err := EncodeBatch(&BatchFrame{Seq: seq, Commands: commands})
	if err != nil {
		return err
	}

	ack := b.registerAck(seq)
	if err := b.writeFrame(frame); err != nil {
		b.dropAck(seq)
		return err
	}

	select {
	case err := <-ack:
		return err
	case <-b.closed:
		return ErrClosed
	case <-ctx.Done():
		b.dropAck(seq)
		return ctx.Err()
	}
}

// CancelBatchUpdate discards the buffered batch. The host never sees a
// cancelled transaction.
func (b *RemoteBridge) CancelBatchUpdate() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.inBatch {
		return ErrNoOpenBatch
	}
	b.inBatch = false
	b.pending = b.pending[:0]
	return nil
}

// Close tears down the connection. Outstanding commits fail with
// ErrClosed.
func (b *RemoteBridge) Close() error {
	var err error
	b.closeOnce.Do(func() {
		close(b.closed)
		if b.conn != nil {
			err = b.conn.Close()
		}
	})
	return err
}

func (b *RemoteBridge) buffer(c Command) error {
	if !b.initialized.Load() {
		return ErrNotInitialized
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.inBatch {
		return ErrNoOpenBatch
	}
	b.pending = append(b.pending, c)
	return nil
}

func (b *RemoteBridge) registerAck(seq uint64) chan error {
	ch := make(chan error, 1)
	b.ackMu.Lock()
	b.acks[seq] = ch
	b.ackMu.Unlock()
	return ch
}

func (b *RemoteBridge) dropAck(seq uint64) {
	b.ackMu.Lock()
	delete(b.acks, seq)
	b.ackMu.Unlock()
}

func (b *RemoteBridge) resolveAck(seq uint64, err error) {
	b.ackMu.Lock()
	ch, ok := b.acks[seq]
	if ok {
		delete(b.acks, seq)
	}
	b.ackMu.Unlock()
	if ok {
		ch <- err
	}
}

func (b *RemoteBridge) writeFrame(frame []byte) error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	b.conn.SetWriteDeadline(time.Now().Add(b.cfg.WriteTimeout))
	if err := b.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		return fmt.Errorf("bridge: write frame: %w", err)
	}
	return nil
}

// readLoop dispatches inbound frames until the connection drops.
func (b *RemoteBridge) readLoop() {
	defer b.Close()

	for {
		_, data, err := b.conn.ReadMessage()
		if err != nil {
			select {
			case <-b.closed:
			default:
				b.logger.Warn("bridge read failed", "error", err)
			}
			return
		}
		if len(data) == 0 {
			continue
		}

		switch data[0] {
		case FrameAck:
			d := NewDecoder(data[1:])
			seq, err := d.ReadUvarint()
			if err != nil {
				b.logger.Warn("malformed ack frame", "error", err)
				continue
			}
			b.resolveAck(seq, nil)
		case FrameNack:
			d := NewDecoder(data[1:])
			seq, err := d.ReadUvarint()
			if err != nil {
				b.logger.Warn("malformed nack frame", "error", err)
				continue
			}
			reason, _ := d.ReadString()
			b.resolveAck(seq, fmt.Errorf("bridge: host rejected batch %d: %s", seq, reason))
		case FrameEvent:
			ev, err := DecodeEvent(data)
			if err != nil {
				b.logger.Warn("malformed event frame", "error", err)
				continue
			}
			if b.cfg.Sink != nil {
				b.cfg.Sink.DispatchNativeEvent(*ev)
			}
		default:
			b.logger.Warn("unknown frame type", "type", data[0])
		}
	}
}

// pingLoop keeps the connection alive.
func (b *RemoteBridge) pingLoop() {
	ticker := time.NewTicker(b.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.writeMu.Lock()
			b.conn.SetWriteDeadline(time.Now().Add(b.cfg.WriteTimeout))
			err := b.conn.WriteMessage(websocket.PingMessage, nil)
			b.writeMu.Unlock()
			if err != nil {
				return
			}
		case <-b.closed:
			return
		}
	}
}
