package protocol

import (
	"errors"
	"fmt"
)

// ErrUnknownOp is returned for an op kind the decoder does not know.
var ErrUnknownOp = errors.New("protocol: unknown op kind")

// Version is the protocol version carried in Hello.
const Version uint8 = 1

// Hello is the first frame a server sends. It names the node the replica
// should treat as its container.
type Hello struct {
	Version   uint8
	Session   string
	Container uint64
}

// EncodeHello encodes a Hello to bytes.
func EncodeHello(h *Hello) []byte {
	e := NewEncoder()
	e.WriteByte(h.Version)
	e.WriteString(h.Session)
	e.WriteUvarint(h.Container)
	return e.Bytes()
}

// DecodeHello decodes a Hello from bytes.
func DecodeHello(data []byte) (*Hello, error) {
	d := NewDecoder(data)
	h := &Hello{}
	var err error
	if h.Version, err = d.ReadByte(); err != nil {
		return nil, err
	}
	if h.Session, err = d.ReadString(); err != nil {
		return nil, err
	}
	if h.Container, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	return h, d.Finish()
}

// EventMessage is a user event raised on a replica node.
type EventMessage struct {
	Seq    uint64
	NodeID uint64
	Type   string
	Data   string
}

// EncodeEvent encodes an EventMessage to bytes.
func EncodeEvent(ev *EventMessage) []byte {
	e := NewEncoder()
	e.WriteUvarint(ev.Seq)
	e.WriteUvarint(ev.NodeID)
	e.WriteString(ev.Type)
	e.WriteString(ev.Data)
	return e.Bytes()
}

// DecodeEvent decodes an EventMessage from bytes.
func DecodeEvent(data []byte) (*EventMessage, error) {
	d := NewDecoder(data)
	ev := &EventMessage{}
	var err error
	if ev.Seq, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	if ev.NodeID, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	if ev.Type, err = d.ReadString(); err != nil {
		return nil, err
	}
	if ev.Data, err = d.ReadString(); err != nil {
		return nil, err
	}
	return ev, d.Finish()
}

// ErrorCode identifies the type of error.
type ErrorCode uint16

const (
	ErrUnknown      ErrorCode = 0x0000 // Unknown error
	ErrInvalidFrame ErrorCode = 0x0001 // Malformed frame
	ErrInvalidEvent ErrorCode = 0x0002 // Malformed event
	ErrUnknownNode  ErrorCode = 0x0003 // Event addressed to a node that no longer exists
	ErrServerError  ErrorCode = 0x0100 // Internal server error
)

// String returns the string representation of the error code.
func (ec ErrorCode) String() string {
	switch ec {
	case ErrInvalidFrame:
		return "InvalidFrame"
	case ErrInvalidEvent:
		return "InvalidEvent"
	case ErrUnknownNode:
		return "UnknownNode"
	case ErrServerError:
		return "ServerError"
	default:
		return "Unknown"
	}
}

// ErrorMessage is sent when the peer did something wrong. Fatal errors are
// followed by the connection closing.
type ErrorMessage struct {
	Code    ErrorCode
	Message string
	Fatal   bool
}

func (em *ErrorMessage) Error() string {
	return fmt.Sprintf("protocol: %s: %s", em.Code, em.Message)
}

// EncodeErrorMessage encodes an ErrorMessage to bytes.
func EncodeErrorMessage(em *ErrorMessage) []byte {
	e := NewEncoder()
	e.WriteUvarint(uint64(em.Code))
	e.WriteString(em.Message)
	e.WriteBool(em.Fatal)
	return e.Bytes()
}

// DecodeErrorMessage decodes an ErrorMessage from bytes.
func DecodeErrorMessage(data []byte) (*ErrorMessage, error) {
	d := NewDecoder(data)
	code, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	em := &ErrorMessage{Code: ErrorCode(code)}
	if em.Message, err = d.ReadString(); err != nil {
		return nil, err
	}
	if em.Fatal, err = d.ReadBool(); err != nil {
		return nil, err
	}
	return em, d.Finish()
}
