package protocol

import (
	"fmt"
	"math"
	"strconv"
)

// Kinds of attribute values on the wire.
const (
	valueNil    byte = 0x00
	valueString byte = 0x01
	valueBool   byte = 0x02
	valueInt    byte = 0x03
	valueFloat  byte = 0x04
)

// Encoder appends binary data to an internal buffer.
type Encoder struct {
	buf []byte
}

// NewEncoder creates a new encoder with a default initial capacity.
func NewEncoder() *Encoder {
	return &Encoder{buf: make([]byte, 0, 256)}
}

// Reset empties the encoder, reusing the underlying buffer.
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
}

// Bytes returns the encoded bytes. The returned slice is valid until
// the next call to Reset or any Write method.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Len returns the number of bytes currently encoded.
func (e *Encoder) Len() int {
	return len(e.buf)
}

// WriteByte appends a single byte. The buffer is unbounded, so unlike
// io.ByteWriter there is no error to return.
func (e *Encoder) WriteByte(b byte) {
	e.buf = append(e.buf, b)
}

// WriteUvarint appends an unsigned varint.
func (e *Encoder) WriteUvarint(v uint64) {
	for v >= 0x80 {
		e.buf = append(e.buf, byte(v)|0x80)
		v >>= 7
	}
	e.buf = append(e.buf, byte(v))
}

// WriteSvarint appends a signed varint using ZigZag encoding.
func (e *Encoder) WriteSvarint(v int64) {
	e.WriteUvarint(uint64((v << 1) ^ (v >> 63)))
}

// WriteString appends a varint length followed by the string bytes.
func (e *Encoder) WriteString(s string) {
	e.WriteUvarint(uint64(len(s)))
	e.buf = append(e.buf, s...)
}

// WriteBool appends a boolean as a single byte (0x00 or 0x01).
func (e *Encoder) WriteBool(b bool) {
	if b {
		e.buf = append(e.buf, 0x01)
	} else {
		e.buf = append(e.buf, 0x00)
	}
}

// WriteUint64 appends a uint64 in big-endian byte order.
func (e *Encoder) WriteUint64(v uint64) {
	e.buf = append(e.buf,
		byte(v>>56), byte(v>>48), byte(v>>40), byte(v>>32),
		byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// WriteFloat64 appends a float64 in IEEE 754 format (big-endian).
func (e *Encoder) WriteFloat64(v float64) {
	e.WriteUint64(math.Float64bits(v))
}

// WriteValue appends an attribute value with its kind. Integers of any width
// travel as int64 and floats as float64. Unsigned values above
// math.MaxInt64 and any other type are sent in their %v form as a string.
func (e *Encoder) WriteValue(v any) {
	switch x := v.(type) {
	case nil:
		e.WriteByte(valueNil)
	case string:
		e.WriteByte(valueString)
		e.WriteString(x)
	case bool:
		e.WriteByte(valueBool)
		e.WriteBool(x)
	case int:
		e.writeInt(int64(x))
	case int8:
		e.writeInt(int64(x))
	case int16:
		e.writeInt(int64(x))
	case int32:
		e.writeInt(int64(x))
	case int64:
		e.writeInt(x)
	case uint8:
		e.writeInt(int64(x))
	case uint16:
		e.writeInt(int64(x))
	case uint32:
		e.writeInt(int64(x))
	case uint:
		e.writeUint(uint64(x))
	case uint64:
		e.writeUint(x)
	case uintptr:
		e.writeUint(uint64(x))
	case float32:
		e.WriteByte(valueFloat)
		e.WriteFloat64(float64(x))
	case float64:
		e.WriteByte(valueFloat)
		e.WriteFloat64(x)
	case fmt.Stringer:
		e.WriteByte(valueString)
		e.WriteString(x.String())
	default:
		e.WriteByte(valueString)
		e.WriteString(fmt.Sprintf("%v", x))
	}
}

func (e *Encoder) writeUint(v uint64) {
	if v > math.MaxInt64 {
		e.WriteByte(valueString)
		e.WriteString(strconv.FormatUint(v, 10))
		return
	}
	e.writeInt(int64(v))
}

func (e *Encoder) writeInt(v int64) {
	e.WriteByte(valueInt)
	e.WriteSvarint(v)
}
