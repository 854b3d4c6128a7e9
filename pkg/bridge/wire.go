package bridge

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Frame types on the wire. The runtime sends Init and Batch frames; the
// host answers with Ack/Nack and pushes Event frames at any time.
const (
	FrameInit  byte = 0x01
	FrameBatch byte = 0x02
	FrameAck   byte = 0x03
	FrameNack  byte = 0x04
	FrameEvent byte = 0x05
)

// Prop maps and event payloads hold arbitrary nested values, so they ride
// inside the frame as msgpack blobs rather than hand-rolled encodings.
// Handler functions never cross the wire; callers strip them first.

func encodeProps(e *Encoder, props map[string]any) error {
	if props == nil {
		e.WriteUvarint(0)
		return nil
	}
	blob, err := msgpack.Marshal(props)
	if err != nil {
		return fmt.Errorf("bridge: encode props: %w", err)
	}
	e.WriteLenBytes(blob)
	return nil
}

func decodeProps(d *Decoder) (map[string]any, error) {
	blob, err := d.ReadLenBytes()
	if err != nil {
		return nil, err
	}
	if len(blob) == 0 {
		return nil, nil
	}
	dec := msgpack.NewDecoder(bytes.NewReader(blob))
	// Loose decoding keeps value types stable across the wire: all ints
	// come back as int64, all floats as float64.
	dec.UseLooseInterfaceDecoding(true)

	var props map[string]any
	if err := dec.Decode(&props); err != nil {
		return nil, fmt.Errorf("bridge: decode props: %w", err)
	}
	return props, nil
}

// EncodeBatch encodes a batch frame.
//
// Layout: frame type, seq, command count, then per command: op byte and
// the op's fields in declaration order.
func EncodeBatch(bf *BatchFrame) ([]byte, error) {
	e := NewEncoder()
	e.WriteByte(FrameBatch)
	e.WriteUvarint(bf.Seq)
	e.WriteUvarint(uint64(len(bf.Commands)))

	for i := range bf.Commands {
		c := &bf.Commands[i]
		e.WriteByte(byte(c.Op))
		switch c.Op {
		case OpCreateView:
			e.WriteString(c.ViewID)
			e.WriteString(c.TypeTag)
			if err := encodeProps(e, c.Props); err != nil {
				return nil, err
			}
		case OpUpdateView:
			e.WriteString(c.ViewID)
			if err := encodeProps(e, c.Props); err != nil {
				return nil, err
			}
		case OpDeleteView, OpDetachView:
			e.WriteString(c.ViewID)
		case OpAttachView:
			e.WriteString(c.ViewID)
			e.WriteString(c.ParentID)
			e.WriteUvarint(uint64(c.Index))
		case OpSetChildren:
			e.WriteString(c.ViewID)
			e.WriteStringSlice(c.Children)
		case OpAddListeners, OpRemoveListeners:
			e.WriteString(c.ViewID)
			e.WriteStringSlice(c.Events)
		default:
			return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownCommand, byte(c.Op))
		}
	}
	return e.Bytes(), nil
}

// DecodeBatch decodes a batch frame produced by EncodeBatch.
func DecodeBatch(buf []byte) (*BatchFrame, error) {
	d := NewDecoder(buf)
	ft, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	if ft != FrameBatch {
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownFrame, ft)
	}

	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	count, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	if count > MaxCollectionCount {
		return nil, ErrCollectionTooLarge
	}

	bf := &BatchFrame{Seq: seq, Commands: make([]Command, 0, count)}
	for i := uint64(0); i < count; i++ {
		op, err := d.ReadByte()
		if err != nil {
			return nil, err
		}
		c := Command{Op: CommandOp(op)}
		switch c.Op {
		case OpCreateView:
			if c.ViewID, err = d.ReadString(); err != nil {
				return nil, err
			}
			if c.TypeTag, err = d.ReadString(); err != nil {
				return nil, err
			}
			if c.Props, err = decodeProps(d); err != nil {
				return nil, err
			}
		case OpUpdateView:
			if c.ViewID, err = d.ReadString(); err != nil {
				return nil, err
			}
			if c.Props, err = decodeProps(d); err != nil {
				return nil, err
			}
		case OpDeleteView, OpDetachView:
			if c.ViewID, err = d.ReadString(); err != nil {
				return nil, err
			}
		case OpAttachView:
			if c.ViewID, err = d.ReadString(); err != nil {
				return nil, err
			}
			if c.ParentID, err = d.ReadString(); err != nil {
				return nil, err
			}
			idx, err := d.ReadUvarint()
			if err != nil {
				return nil, err
			}
			c.Index = int(idx)
		case OpSetChildren:
			if c.ViewID, err = d.ReadString(); err != nil {
				return nil, err
			}
			if c.Children, err = d.ReadStringSlice(); err != nil {
				return nil, err
			}
		case OpAddListeners, OpRemoveListeners:
			if c.ViewID, err = d.ReadString(); err != nil {
				return nil, err
			}
			if c.Events, err = d.ReadStringSlice(); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownCommand, op)
		}
		bf.Commands = append(bf.Commands, c)
	}
	return bf, nil
}

// EncodeEvent encodes an inbound native event frame.
func EncodeEvent(ev *NativeEvent) ([]byte, error) {
	e := NewEncoder()
	e.WriteByte(FrameEvent)
	e.WriteUvarint(ev.Seq)
	e.WriteString(ev.ViewID)
	e.WriteString(ev.Type)
	if err := encodeProps(e, ev.Payload); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

// DecodeEvent decodes an event frame produced by EncodeEvent.
func DecodeEvent(buf []byte) (*NativeEvent, error) {
	d := NewDecoder(buf)
	ft, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	if ft != FrameEvent {
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownFrame, ft)
	}

	ev := &NativeEvent{}
	if ev.Seq, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	if ev.ViewID, err = d.ReadString(); err != nil {
		return nil, err
	}
	if ev.Type, err = d.ReadString(); err != nil {
		return nil, err
	}
	if ev.Payload, err = decodeProps(d); err != nil {
		return nil, err
	}
	return ev, nil
}

// EncodeAck encodes a host acknowledgement for the batch with seq.
func EncodeAck(seq uint64) []byte {
	e := NewEncoder()
	e.WriteByte(FrameAck)
	e.WriteUvarint(seq)
	return e.Bytes()
}

// EncodeNack encodes a host rejection for the batch with seq.
func EncodeNack(seq uint64, reason string) []byte {
	e := NewEncoder()
	e.WriteByte(FrameNack)
	e.WriteUvarint(seq)
	e.WriteString(reason)
	return e.Bytes()
}

// EncodeInit encodes the one-time handshake frame.
func EncodeInit() []byte {
	return []byte{FrameInit}
}
