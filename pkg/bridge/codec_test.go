package bridge

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBatchRoundTrip(t *testing.T) {
	bf := &BatchFrame{
		Seq: 42,
		Commands: []Command{
			{Op: OpCreateView, ViewID: "v1", TypeTag: "View", Props: map[string]any{"width": int64(100), "label": "hi"}},
			{Op: OpUpdateView, ViewID: "v1", Props: map[string]any{"label": "bye", "width": nil}},
			{Op: OpAttachView, ViewID: "v1", ParentID: "root", Index: 2},
			{Op: OpDetachView, ViewID: "v1"},
			{Op: OpSetChildren, ViewID: "root", Children: []string{"v1", "v2"}},
			{Op: OpAddListeners, ViewID: "v1", Events: []string{"onPress"}},
			{Op: OpRemoveListeners, ViewID: "v1", Events: []string{"onPress", "onLong"}},
			{Op: OpDeleteView, ViewID: "v1"},
		},
	}

	data, err := EncodeBatch(bf)
	if err != nil {
		t.Fatalf("EncodeBatch: %v", err)
	}

	got, err := DecodeBatch(data)
	if err != nil {
		t.Fatalf("DecodeBatch: %v", err)
	}

	if diff := cmp.Diff(bf, got); diff != "" {
		t.Errorf("batch round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestBatchRoundTripEmpty(t *testing.T) {
	data, err := EncodeBatch(&BatchFrame{Seq: 1})
	if err != nil {
		t.Fatalf("EncodeBatch: %v", err)
	}
	got, err := DecodeBatch(data)
	if err != nil {
		t.Fatalf("DecodeBatch: %v", err)
	}
	if got.Seq != 1 || len(got.Commands) != 0 {
		t.Errorf("got seq=%d commands=%d, want 1/0", got.Seq, len(got.Commands))
	}
}

func TestEncodeBatchUnknownOp(t *testing.T) {
	_, err := EncodeBatch(&BatchFrame{Commands: []Command{{Op: CommandOp(0xFF)}}})
	if !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("err = %v, want ErrUnknownCommand", err)
	}
}

func TestDecodeBatchWrongFrameType(t *testing.T) {
	_, err := DecodeBatch([]byte{FrameEvent, 0, 0})
	if !errors.Is(err, ErrUnknownFrame) {
		t.Errorf("err = %v, want ErrUnknownFrame", err)
	}
}

func TestDecodeBatchTruncated(t *testing.T) {
	bf := &BatchFrame{
		Seq:      7,
		Commands: []Command{{Op: OpCreateView, ViewID: "v1", TypeTag: "View"}},
	}
	data, err := EncodeBatch(bf)
	if err != nil {
		t.Fatalf("EncodeBatch: %v", err)
	}

	for cut := 1; cut < len(data); cut++ {
		if _, err := DecodeBatch(data[:cut]); err == nil {
			t.Errorf("DecodeBatch accepted frame truncated to %d bytes", cut)
		}
	}
}

func TestEventRoundTrip(t *testing.T) {
	ev := &NativeEvent{
		Seq:     9,
		ViewID:  "v3",
		Type:    "press",
		Payload: map[string]any{"x": int64(10), "y": int64(20)},
	}

	data, err := EncodeEvent(ev)
	if err != nil {
		t.Fatalf("EncodeEvent: %v", err)
	}
	got, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}
	if diff := cmp.Diff(ev, got); diff != "" {
		t.Errorf("event round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEventRoundTripNoPayload(t *testing.T) {
	data, err := EncodeEvent(&NativeEvent{ViewID: "v1", Type: "blur"})
	if err != nil {
		t.Fatalf("EncodeEvent: %v", err)
	}
	got, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}
	if got.Payload != nil {
		t.Errorf("Payload = %v, want nil", got.Payload)
	}
}

func TestDecoderAllocationLimit(t *testing.T) {
	e := NewEncoder()
	e.WriteUvarint(MaxAllocation + 1)
	d := NewDecoder(e.Bytes())
	if _, err := d.ReadString(); !errors.Is(err, ErrAllocationTooLarge) {
		t.Errorf("err = %v, want ErrAllocationTooLarge", err)
	}
}

func TestDecoderCollectionLimit(t *testing.T) {
	e := NewEncoder()
	e.WriteUvarint(MaxCollectionCount + 1)
	d := NewDecoder(e.Bytes())
	if _, err := d.ReadStringSlice(); !errors.Is(err, ErrCollectionTooLarge) {
		t.Errorf("err = %v, want ErrCollectionTooLarge", err)
	}
}

func TestVarintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 300, 1 << 20, 1<<63 - 1}
	for _, v := range values {
		e := NewEncoder()
		e.WriteUvarint(v)
		d := NewDecoder(e.Bytes())
		got, err := d.ReadUvarint()
		if err != nil {
			t.Fatalf("ReadUvarint(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("varint round trip = %d, want %d", got, v)
		}
		if !d.EOF() {
			t.Errorf("decoder not at EOF after %d", v)
		}
	}
}

func TestVarintOverflow(t *testing.T) {
	// Eleven continuation bytes exceed a 64-bit varint.
	data := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x01}
	d := NewDecoder(data)
	if _, err := d.ReadUvarint(); !errors.Is(err, ErrVarintOverflow) {
		t.Errorf("err = %v, want ErrVarintOverflow", err)
	}
}

func TestCommandOpString(t *testing.T) {
	if got := OpCreateView.String(); got != "CreateView" {
		t.Errorf("String() = %q, want CreateView", got)
	}
	if got := CommandOp(0xEE).String(); got != "Unknown" {
		t.Errorf("String() = %q, want Unknown", got)
	}
}
