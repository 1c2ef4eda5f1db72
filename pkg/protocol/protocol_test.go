package protocol

import (
	"bytes"
	"errors"
	"io"
	"math"
	"reflect"
	"testing"
)

func TestFrameEncodeDecode(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
	}{
		{"empty_payload", Frame{Type: FrameEvent, Payload: []byte{}}},
		{"with_payload", Frame{Type: FrameOps, Flags: FlagInitial, Payload: []byte{0x01, 0x02, 0x03}}},
		{"hello", Frame{Type: FrameHello, Payload: []byte("abc")}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			encoded := tc.frame.Encode()
			if len(encoded) != FrameHeaderSize+len(tc.frame.Payload) {
				t.Fatalf("Encode() length = %d", len(encoded))
			}

			decoded, err := DecodeFrame(encoded)
			if err != nil {
				t.Fatalf("DecodeFrame() error = %v", err)
			}
			if decoded.Type != tc.frame.Type || decoded.Flags != tc.frame.Flags {
				t.Errorf("header = %v/%v, want %v/%v", decoded.Type, decoded.Flags, tc.frame.Type, tc.frame.Flags)
			}
			if !bytes.Equal(decoded.Payload, tc.frame.Payload) {
				t.Errorf("payload = %v, want %v", decoded.Payload, tc.frame.Payload)
			}

			var buf bytes.Buffer
			if err := WriteFrame(&buf, &tc.frame); err != nil {
				t.Fatal(err)
			}
			read, err := ReadFrame(&buf)
			if err != nil {
				t.Fatalf("ReadFrame() error = %v", err)
			}
			if read.Type != tc.frame.Type || !bytes.Equal(read.Payload, tc.frame.Payload) {
				t.Errorf("ReadFrame() = %+v", read)
			}
		})
	}
}

func TestDecodeFrameErrors(t *testing.T) {
	good := NewFrame(FrameOps, []byte{1, 2}).Encode()

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"short_header", good[:3], io.ErrUnexpectedEOF},
		{"short_payload", good[:len(good)-1], io.ErrUnexpectedEOF},
		{"trailing", append(append([]byte{}, good...), 0xFF), ErrTrailingBytes},
		{"bad_type", append([]byte{0x7F}, good[1:]...), ErrInvalidFrameType},
		{"too_large", []byte{byte(FrameOps), 0, 0xFF, 0xFF, 0xFF, 0xFF}, ErrFrameTooLarge},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeFrame(tc.data); !errors.Is(err, tc.want) {
				t.Errorf("DecodeFrame() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestBatchRoundTrip(t *testing.T) {
	in := &Batch{
		Seq: 300,
		Ops: []HostOp{
			{Kind: OpCreateElement, Node: 2, Name: "div"},
			{Kind: OpCreateText, Node: 3},
			{Kind: OpSetAttribute, Node: 3, Name: "nodeValue", Value: "Counter: 0"},
			{Kind: OpSetAttribute, Node: 2, Name: "tabindex", Value: int64(-1)},
			{Kind: OpSetAttribute, Node: 2, Name: "disabled", Value: true},
			{Kind: OpSetAttribute, Node: 2, Name: "ratio", Value: 0.5},
			{Kind: OpSetAttribute, Node: 2, Name: "title", Value: nil},
			{Kind: OpAppendChild, Parent: 2, Node: 3},
			{Kind: OpAddListener, Node: 2, Name: "click"},
			{Kind: OpAppendChild, Parent: 1, Node: 2},
			{Kind: OpReplaceChild, Parent: 1, Node: 4, Old: 2},
			{Kind: OpClearAttribute, Node: 4, Name: "class"},
			{Kind: OpRemoveListener, Node: 4, Name: "click"},
			{Kind: OpRemoveChild, Parent: 1, Node: 4},
		},
	}

	out, err := DecodeBatch(EncodeBatch(in))
	if err != nil {
		t.Fatalf("DecodeBatch() error = %v", err)
	}
	if !reflect.DeepEqual(out, in) {
		t.Errorf("round trip mismatch:\n got %v\nwant %v", out.Ops, in.Ops)
	}
}

func TestWriteValueNormalizesIntegers(t *testing.T) {
	e := NewEncoder()
	e.WriteValue(7)
	e.WriteValue(uint8(9))
	e.WriteValue(float32(1.5))
	e.WriteValue([]string{"a"})
	e.WriteValue(uint(3))
	e.WriteValue(uint64(1 << 40))
	e.WriteValue(uint64(math.MaxUint64))

	d := NewDecoder(e.Bytes())
	want := []any{int64(7), int64(9), 1.5, "[a]", int64(3), int64(1 << 40), "18446744073709551615"}
	for i, w := range want {
		got, err := d.ReadValue()
		if err != nil {
			t.Fatalf("value %d: %v", i, err)
		}
		if got != w {
			t.Errorf("value %d = %#v, want %#v", i, got, w)
		}
	}
	if err := d.Finish(); err != nil {
		t.Error(err)
	}
}

func TestDecodeBatchRejectsUnknownOp(t *testing.T) {
	data := []byte{0x01, 0x01, 0x7E}
	if _, err := DecodeBatch(data); !errors.Is(err, ErrUnknownOp) {
		t.Errorf("error = %v, want ErrUnknownOp", err)
	}
}

func TestDecodeBatchRejectsHugeCount(t *testing.T) {
	e := NewEncoder()
	e.WriteUvarint(1)
	e.WriteUvarint(MaxCollectionCount + 1)
	if _, err := DecodeBatch(e.Bytes()); !errors.Is(err, ErrCollectionTooLarge) {
		t.Errorf("error = %v, want ErrCollectionTooLarge", err)
	}
}

func TestMessages(t *testing.T) {
	h := &Hello{Version: Version, Session: "s-1", Container: 1}
	gotHello, err := DecodeHello(EncodeHello(h))
	if err != nil || *gotHello != *h {
		t.Errorf("hello = %+v, %v", gotHello, err)
	}

	ev := &EventMessage{Seq: 4, NodeID: 12, Type: "input", Data: "héllo"}
	gotEvent, err := DecodeEvent(EncodeEvent(ev))
	if err != nil || *gotEvent != *ev {
		t.Errorf("event = %+v, %v", gotEvent, err)
	}

	em := &ErrorMessage{Code: ErrUnknownNode, Message: "node 12", Fatal: false}
	gotErr, err := DecodeErrorMessage(EncodeErrorMessage(em))
	if err != nil || *gotErr != *em {
		t.Errorf("error message = %+v, %v", gotErr, err)
	}
	if em.Error() != "protocol: UnknownNode: node 12" {
		t.Errorf("Error() = %q", em.Error())
	}

	if _, err := DecodeEvent(EncodeEvent(ev)[:3]); err == nil {
		t.Error("truncated event should fail")
	}
}

func TestStrings(t *testing.T) {
	if OpReplaceChild.String() != "ReplaceChild" || OpKind(0).String() != "Unknown" {
		t.Error("OpKind.String")
	}
	if FrameOps.String() != "Ops" || FrameType(9).Valid() {
		t.Error("FrameType.String")
	}
	op := HostOp{Kind: OpReplaceChild, Parent: 1, Node: 3, Old: 2}
	if op.String() != "ReplaceChild #1>#2 with #3" {
		t.Errorf("HostOp.String() = %q", op.String())
	}
}
