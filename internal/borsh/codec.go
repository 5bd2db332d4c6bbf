package borsh

import (
	"errors"
	"fmt"
)

// ErrUnknownStruct is returned when a codec is asked for an unregistered name.
var ErrUnknownStruct = errors.New("unknown struct")

// FieldValue is one decoded field.
type FieldValue struct {
	Name  string
	Value any
}

// Struct is a decoded record. Field values use these Go types:
//
//	u8, u16, u32, u64   uint8, uint16, uint32, uint64
//	address             [32]byte
//	string              string
//	option<T>           nil when absent, otherwise the T value
//	vec<T>              []any
//	fixed_bytes[n]      []byte
//	struct              *Struct
type Struct struct {
	Name   string
	Fields []FieldValue
}

// Get returns the value of the named field.
func (s *Struct) Get(name string) (any, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Codec decodes and encodes structs described by a Registry.
type Codec struct {
	registry *Registry
}

// NewCodec returns a codec for reg.
func NewCodec(reg *Registry) *Codec {
	return &Codec{registry: reg}
}

// Registry returns the schemas the codec was built with.
func (c *Codec) Registry() *Registry {
	return c.registry
}

// Decode reads the named struct from the start of data. Bytes after the
// struct are ignored.
func (c *Codec) Decode(name string, data []byte, opts ...ReaderOption) (*Struct, error) {
	return c.DecodeFrom(NewReader(data, opts...), name)
}

// DecodeFrom reads the named struct at the reader's cursor.
func (c *Codec) DecodeFrom(r *Reader, name string) (*Struct, error) {
	s, ok := c.registry.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStruct, name)
	}
	out := &Struct{Name: name, Fields: make([]FieldValue, 0, len(s.Fields))}
	for _, f := range s.Fields {
		v, err := c.decodeValue(r, f.Type)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", name, f.Name, err)
		}
		out.Fields = append(out.Fields, FieldValue{Name: f.Name, Value: v})
	}
	return out, nil
}

func (c *Codec) decodeValue(r *Reader, t Type) (any, error) {
	if p, ok := primitives[t.Kind]; ok {
		return p.decode(r)
	}

	switch t.Kind {
	case KindOption:
		present, err := r.ReadPresence()
		if err != nil {
			return nil, err
		}
		if !present {
			return nil, nil
		}
		return c.decodeValue(r, *t.Elem)

	case KindVec:
		start := r.Offset()
		n, err := r.ReadLen()
		if err != nil {
			return nil, err
		}
		// Reject lengths the remaining bytes cannot possibly hold before
		// allocating. Zero-sized elements are refused by NewRegistry; a
		// hand-built registry still must not allocate from the prefix.
		elem := c.minSize(*t.Elem)
		if n > 0 && (elem == 0 || n > r.Remaining()/elem) {
			return nil, &DecodeError{Offset: start, What: "vec", Err: ErrUnexpectedEndOfBuffer}
		}
		items := make([]any, 0, n)
		for i := 0; i < n; i++ {
			v, err := c.decodeValue(r, *t.Elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			items = append(items, v)
		}
		return items, nil

	case KindFixedBytes:
		return r.ReadFixed(t.Len)

	case KindStruct:
		return c.DecodeFrom(r, t.Struct)

	default:
		return nil, fmt.Errorf("%w: unsupported kind %s", ErrSchemaMismatch, t.Kind)
	}
}

func (c *Codec) minSize(t Type) int {
	n, err := c.registry.typeMinSize(t, map[string]bool{})
	if err != nil {
		return 0
	}
	return n
}

// Encode serializes s using the layout registered under s.Name. Fields are
// matched by name in schema order; a missing field fails with
// ErrSchemaMismatch.
func (c *Codec) Encode(s *Struct) ([]byte, error) {
	w := NewWriter(c.registry.MinSize(s.Name))
	if err := c.EncodeTo(w, s); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// EncodeTo appends s to w.
func (c *Codec) EncodeTo(w *Writer, s *Struct) error {
	schema, ok := c.registry.Lookup(s.Name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownStruct, s.Name)
	}
	for _, f := range schema.Fields {
		v, ok := s.Get(f.Name)
		if !ok {
			return fmt.Errorf("%s.%s: %w: missing field", s.Name, f.Name, ErrSchemaMismatch)
		}
		if err := c.encodeValue(w, f.Type, v); err != nil {
			return fmt.Errorf("%s.%s: %w", s.Name, f.Name, err)
		}
	}
	return nil
}

func (c *Codec) encodeValue(w *Writer, t Type, v any) error {
	if p, ok := primitives[t.Kind]; ok {
		return p.encode(w, v)
	}

	switch t.Kind {
	case KindOption:
		if v == nil {
			w.WritePresence(false)
			return nil
		}
		w.WritePresence(true)
		return c.encodeValue(w, *t.Elem, v)

	case KindVec:
		items, ok := v.([]any)
		if !ok {
			return mismatch(KindVec, v)
		}
		w.WriteLen(len(items))
		for i, item := range items {
			if err := c.encodeValue(w, *t.Elem, item); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		return nil

	case KindFixedBytes:
		b, ok := v.([]byte)
		if !ok {
			return mismatch(KindFixedBytes, v)
		}
		if len(b) != t.Len {
			return fmt.Errorf("%w: fixed_bytes[%d] holds %d bytes", ErrSchemaMismatch, t.Len, len(b))
		}
		w.WriteFixed(b)
		return nil

	case KindStruct:
		sv, ok := v.(*Struct)
		if !ok || sv == nil {
			return mismatch(KindStruct, v)
		}
		if sv.Name != t.Struct {
			return fmt.Errorf("%w: expected struct %s, got %s", ErrSchemaMismatch, t.Struct, sv.Name)
		}
		return c.EncodeTo(w, sv)

	default:
		return fmt.Errorf("%w: unsupported kind %s", ErrSchemaMismatch, t.Kind)
	}
}
