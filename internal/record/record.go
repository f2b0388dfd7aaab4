package record

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"minirel/internal/bx"
)

var (
	ErrTypeMismatch = errors.New("record: value type does not match attribute")
	ErrBadAttrIndex = errors.New("record: attribute index out of range")
	ErrBadBuffer    = errors.New("record: buffer size does not match schema")
)

// RID locates a record on disk: data page number (>= 1) and slot index.
// It is stable across updates and reusable after a delete.
type RID struct {
	Page int
	Slot int
}

func (id RID) String() string {
	return fmt.Sprintf("(%d,%d)", id.Page, id.Slot)
}

// Record is a fixed-width tuple buffer plus its identity.
type Record struct {
	ID   RID
	Data []byte
}

// New allocates a zeroed record sized for the schema.
func New(s *Schema) *Record {
	return &Record{Data: make([]byte, s.RecordSize())}
}

// GetAttr decodes attribute i of r into a Value. STRING attributes yield
// the fixed window up to its first NUL byte.
func (r *Record) GetAttr(s *Schema, i int) (Value, error) {
	if i < 0 || i >= len(s.Attrs) {
		return Value{}, fmt.Errorf("get attr %d: %w", i, ErrBadAttrIndex)
	}
	if len(r.Data) != s.RecordSize() {
		return Value{}, fmt.Errorf("get attr %d: %w", i, ErrBadBuffer)
	}

	attr := s.Attrs[i]
	off := s.Offset(i)

	switch attr.Type {
	case TypeInt:
		return IntValue(bx.I32At(r.Data, off)), nil
	case TypeFloat:
		return FloatValue(math.Float32frombits(bx.U32At(r.Data, off))), nil
	case TypeBool:
		return BoolValue(r.Data[off] != 0), nil
	case TypeString:
		window := r.Data[off : off+attr.Length]
		if n := bytes.IndexByte(window, 0); n >= 0 {
			window = window[:n]
		}
		return StringValue(string(window)), nil
	default:
		return Value{}, fmt.Errorf("get attr %d: unknown type %d", i, attr.Type)
	}
}

// SetAttr encodes v into attribute i of r in place. STRING values shorter
// than the attribute width are zero-padded; longer values fill the window.
func (r *Record) SetAttr(s *Schema, i int, v Value) error {
	if i < 0 || i >= len(s.Attrs) {
		return fmt.Errorf("set attr %d: %w", i, ErrBadAttrIndex)
	}
	if len(r.Data) != s.RecordSize() {
		return fmt.Errorf("set attr %d: %w", i, ErrBadBuffer)
	}

	attr := s.Attrs[i]
	if v.Type != attr.Type {
		return fmt.Errorf("set attr %q (%s) with %s: %w",
			attr.Name, attr.Type, v.Type, ErrTypeMismatch)
	}
	off := s.Offset(i)

	switch attr.Type {
	case TypeInt:
		bx.PutI32At(r.Data, off, v.Int)
	case TypeFloat:
		bx.PutU32At(r.Data, off, math.Float32bits(v.Float))
	case TypeBool:
		if v.Bool {
			r.Data[off] = 1
		} else {
			r.Data[off] = 0
		}
	case TypeString:
		window := r.Data[off : off+attr.Length]
		n := copy(window, v.Str)
		for ; n < attr.Length; n++ {
			window[n] = 0
		}
	}
	return nil
}
