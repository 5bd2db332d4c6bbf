package borsh

import (
	"errors"
	"fmt"
)

// Kind enumerates the field kinds a schema can declare.
type Kind uint8

const (
	KindU8 Kind = iota + 1
	KindU16
	KindU32
	KindU64
	KindAddress
	KindString
	KindOption
	KindVec
	KindFixedBytes
	KindStruct
)

var kindNames = map[Kind]string{
	KindU8:         "u8",
	KindU16:        "u16",
	KindU32:        "u32",
	KindU64:        "u64",
	KindAddress:    "address",
	KindString:     "string",
	KindOption:     "option",
	KindVec:        "vec",
	KindFixedBytes: "fixed_bytes",
	KindStruct:     "struct",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Type is a field type. Elem is set for option and vec, Len for fixed_bytes,
// Struct for nested struct references.
type Type struct {
	Kind   Kind
	Elem   *Type
	Len    int
	Struct string
}

func (t Type) String() string {
	switch t.Kind {
	case KindOption:
		return "option<" + t.Elem.String() + ">"
	case KindVec:
		return "vec<" + t.Elem.String() + ">"
	case KindFixedBytes:
		return fmt.Sprintf("fixed_bytes[%d]", t.Len)
	case KindStruct:
		return t.Struct
	default:
		return t.Kind.String()
	}
}

func U8() Type      { return Type{Kind: KindU8} }
func U16() Type     { return Type{Kind: KindU16} }
func U32() Type     { return Type{Kind: KindU32} }
func U64() Type     { return Type{Kind: KindU64} }
func Address() Type { return Type{Kind: KindAddress} }
func String() Type  { return Type{Kind: KindString} }

// Option declares an optional value preceded by a presence byte.
func Option(elem Type) Type { return Type{Kind: KindOption, Elem: &elem} }

// Vec declares a u32-length-prefixed sequence.
func Vec(elem Type) Type { return Type{Kind: KindVec, Elem: &elem} }

// FixedBytes declares exactly n raw bytes.
func FixedBytes(n int) Type { return Type{Kind: KindFixedBytes, Len: n} }

// StructRef refers to another registered struct by name.
func StructRef(name string) Type { return Type{Kind: KindStruct, Struct: name} }

// Field is one named, typed member of a struct schema.
type Field struct {
	Name string
	Type Type
}

// StructSchema is an ordered field layout.
type StructSchema struct {
	Name   string
	Fields []Field
}

// ErrInvalidSchema is returned by NewRegistry for malformed declarations.
var ErrInvalidSchema = errors.New("invalid schema")

// Registry maps struct names to layouts. It is immutable after NewRegistry.
type Registry struct {
	structs map[string]StructSchema
	minSize map[string]int
}

// NewRegistry validates and freezes a set of struct schemas. Every StructRef
// must resolve and references must not be recursive.
func NewRegistry(schemas ...StructSchema) (*Registry, error) {
	r := &Registry{
		structs: make(map[string]StructSchema, len(schemas)),
		minSize: make(map[string]int, len(schemas)),
	}
	for _, s := range schemas {
		if s.Name == "" {
			return nil, fmt.Errorf("%w: unnamed struct", ErrInvalidSchema)
		}
		if _, dup := r.structs[s.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate struct %s", ErrInvalidSchema, s.Name)
		}
		fields := make([]Field, len(s.Fields))
		copy(fields, s.Fields)
		r.structs[s.Name] = StructSchema{Name: s.Name, Fields: fields}
	}

	for name := range r.structs {
		if _, err := r.computeMinSize(name, map[string]bool{}); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MustRegistry is NewRegistry for package-level schema tables.
func MustRegistry(schemas ...StructSchema) *Registry {
	r, err := NewRegistry(schemas...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the layout registered under name.
func (r *Registry) Lookup(name string) (StructSchema, bool) {
	s, ok := r.structs[name]
	return s, ok
}

// MinSize returns the smallest encoding of the named struct: options absent,
// vectors and strings empty.
func (r *Registry) MinSize(name string) int {
	return r.minSize[name]
}

func (r *Registry) computeMinSize(name string, visiting map[string]bool) (int, error) {
	if n, ok := r.minSize[name]; ok {
		return n, nil
	}
	s, ok := r.structs[name]
	if !ok {
		return 0, fmt.Errorf("%w: unknown struct %s", ErrInvalidSchema, name)
	}
	if visiting[name] {
		return 0, fmt.Errorf("%w: recursive struct %s", ErrInvalidSchema, name)
	}
	visiting[name] = true
	defer delete(visiting, name)

	total := 0
	for _, f := range s.Fields {
		n, err := r.typeMinSize(f.Type, visiting)
		if err != nil {
			return 0, fmt.Errorf("%s.%s: %w", name, f.Name, err)
		}
		total += n
	}
	r.minSize[name] = total
	return total, nil
}

func (r *Registry) typeMinSize(t Type, visiting map[string]bool) (int, error) {
	switch t.Kind {
	case KindU8:
		return 1, nil
	case KindU16:
		return 2, nil
	case KindU32, KindString:
		return 4, nil
	case KindVec:
		if t.Elem == nil {
			return 0, fmt.Errorf("%w: vec without element type", ErrInvalidSchema)
		}
		elem, err := r.typeMinSize(*t.Elem, visiting)
		if err != nil {
			return 0, err
		}
		// A zero-sized element lets a length prefix claim any count
		// without consuming input.
		if elem == 0 {
			return 0, fmt.Errorf("%w: vec of zero-sized %s", ErrInvalidSchema, t.Elem)
		}
		return 4, nil
	case KindU64:
		return 8, nil
	case KindAddress:
		return AddressLength, nil
	case KindOption:
		if t.Elem == nil {
			return 0, fmt.Errorf("%w: option without element type", ErrInvalidSchema)
		}
		if _, err := r.typeMinSize(*t.Elem, visiting); err != nil {
			return 0, err
		}
		return 1, nil
	case KindFixedBytes:
		if t.Len < 0 {
			return 0, fmt.Errorf("%w: negative fixed_bytes length", ErrInvalidSchema)
		}
		return t.Len, nil
	case KindStruct:
		return r.computeMinSize(t.Struct, visiting)
	default:
		return 0, fmt.Errorf("%w: unknown kind %s", ErrInvalidSchema, t.Kind)
	}
}
