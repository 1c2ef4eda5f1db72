package protocol

import "fmt"

// OpKind is the kind of host operation.
type OpKind uint8

// Host operation kinds, one per method of the host contract that mutates the
// tree.
const (
	OpCreateElement  OpKind = 0x01 // Node, Name=tag
	OpCreateText     OpKind = 0x02 // Node
	OpAppendChild    OpKind = 0x03 // Parent, Node
	OpRemoveChild    OpKind = 0x04 // Parent, Node
	OpReplaceChild   OpKind = 0x05 // Parent, Node=new, Old
	OpSetAttribute   OpKind = 0x06 // Node, Name, Value
	OpClearAttribute OpKind = 0x07 // Node, Name
	OpAddListener    OpKind = 0x08 // Node, Name=event
	OpRemoveListener OpKind = 0x09 // Node, Name=event
)

// String returns the string representation of the op kind.
func (k OpKind) String() string {
	switch k {
	case OpCreateElement:
		return "CreateElement"
	case OpCreateText:
		return "CreateText"
	case OpAppendChild:
		return "AppendChild"
	case OpRemoveChild:
		return "RemoveChild"
	case OpReplaceChild:
		return "ReplaceChild"
	case OpSetAttribute:
		return "SetAttribute"
	case OpClearAttribute:
		return "ClearAttribute"
	case OpAddListener:
		return "AddListener"
	case OpRemoveListener:
		return "RemoveListener"
	default:
		return "Unknown"
	}
}

// HostOp is a single host tree mutation. Node IDs are assigned by the
// server's document.
type HostOp struct {
	Kind   OpKind
	Node   uint64
	Parent uint64 // Append, Remove and Replace
	Old    uint64 // Replace only
	Name   string // Tag, attribute name or event name
	Value  any    // SetAttribute only
}

func (op HostOp) String() string {
	switch op.Kind {
	case OpCreateElement:
		return fmt.Sprintf("%s #%d <%s>", op.Kind, op.Node, op.Name)
	case OpCreateText:
		return fmt.Sprintf("%s #%d", op.Kind, op.Node)
	case OpAppendChild, OpRemoveChild:
		return fmt.Sprintf("%s #%d>#%d", op.Kind, op.Parent, op.Node)
	case OpReplaceChild:
		return fmt.Sprintf("%s #%d>#%d with #%d", op.Kind, op.Parent, op.Old, op.Node)
	case OpSetAttribute:
		return fmt.Sprintf("%s #%d %s=%v", op.Kind, op.Node, op.Name, op.Value)
	default:
		return fmt.Sprintf("%s #%d %s", op.Kind, op.Node, op.Name)
	}
}

// Batch is the ordered list of operations produced by one render pass or
// one component update.
type Batch struct {
	Seq uint64
	Ops []HostOp
}

// EncodeBatch encodes a batch to bytes.
func EncodeBatch(b *Batch) []byte {
	e := NewEncoder()
	EncodeBatchTo(e, b)
	return e.Bytes()
}

// EncodeBatchTo encodes a batch using the provided encoder.
func EncodeBatchTo(e *Encoder, b *Batch) {
	e.WriteUvarint(b.Seq)
	e.WriteUvarint(uint64(len(b.Ops)))
	for i := range b.Ops {
		encodeOp(e, &b.Ops[i])
	}
}

func encodeOp(e *Encoder, op *HostOp) {
	e.WriteByte(byte(op.Kind))

	switch op.Kind {
	case OpCreateElement:
		e.WriteUvarint(op.Node)
		e.WriteString(op.Name)

	case OpCreateText:
		e.WriteUvarint(op.Node)

	case OpAppendChild, OpRemoveChild:
		e.WriteUvarint(op.Parent)
		e.WriteUvarint(op.Node)

	case OpReplaceChild:
		e.WriteUvarint(op.Parent)
		e.WriteUvarint(op.Node)
		e.WriteUvarint(op.Old)

	case OpSetAttribute:
		e.WriteUvarint(op.Node)
		e.WriteString(op.Name)
		e.WriteValue(op.Value)

	case OpClearAttribute, OpAddListener, OpRemoveListener:
		e.WriteUvarint(op.Node)
		e.WriteString(op.Name)
	}
}

// DecodeBatch decodes a batch from bytes.
func DecodeBatch(data []byte) (*Batch, error) {
	d := NewDecoder(data)
	b, err := DecodeBatchFrom(d)
	if err != nil {
		return nil, err
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return b, nil
}

// DecodeBatchFrom decodes a batch from a decoder.
func DecodeBatchFrom(d *Decoder) (*Batch, error) {
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}

	b := &Batch{Seq: seq, Ops: make([]HostOp, count)}
	for i := range count {
		if err := decodeOp(d, &b.Ops[i]); err != nil {
			return nil, fmt.Errorf("op %d: %w", i, err)
		}
	}
	return b, nil
}

func decodeOp(d *Decoder, op *HostOp) error {
	kind, err := d.ReadByte()
	if err != nil {
		return err
	}
	op.Kind = OpKind(kind)

	switch op.Kind {
	case OpCreateElement:
		if op.Node, err = d.ReadUvarint(); err != nil {
			return err
		}
		op.Name, err = d.ReadString()

	case OpCreateText:
		op.Node, err = d.ReadUvarint()

	case OpAppendChild, OpRemoveChild:
		if op.Parent, err = d.ReadUvarint(); err != nil {
			return err
		}
		op.Node, err = d.ReadUvarint()

	case OpReplaceChild:
		if op.Parent, err = d.ReadUvarint(); err != nil {
			return err
		}
		if op.Node, err = d.ReadUvarint(); err != nil {
			return err
		}
		op.Old, err = d.ReadUvarint()

	case OpSetAttribute:
		if op.Node, err = d.ReadUvarint(); err != nil {
			return err
		}
		if op.Name, err = d.ReadString(); err != nil {
			return err
		}
		op.Value, err = d.ReadValue()

	case OpClearAttribute, OpAddListener, OpRemoveListener:
		if op.Node, err = d.ReadUvarint(); err != nil {
			return err
		}
		op.Name, err = d.ReadString()

	default:
		return fmt.Errorf("%w: 0x%02x", ErrUnknownOp, kind)
	}
	return err
}
