package borsh

import "fmt"

// Getter extracts typed fields from a decoded Struct, keeping the first error
// so callers can read a whole record and check once.
type Getter struct {
	s   *Struct
	err error
}

// NewGetter wraps s.
func NewGetter(s *Struct) *Getter {
	return &Getter{s: s}
}

// Err returns the first extraction failure.
func (g *Getter) Err() error {
	return g.err
}

// Get returns field name of g's struct as T. A missing field or a value of a
// different type records ErrSchemaMismatch and yields the zero T.
func Get[T any](g *Getter, name string) T {
	var zero T
	if g.err != nil {
		return zero
	}
	v, ok := g.s.Get(name)
	if !ok {
		g.err = fmt.Errorf("%w: %s has no field %s", ErrSchemaMismatch, g.s.Name, name)
		return zero
	}
	t, ok := v.(T)
	if !ok {
		g.err = fmt.Errorf("%w: %s.%s is %T, want %T", ErrSchemaMismatch, g.s.Name, name, v, zero)
		return zero
	}
	return t
}

// GetOptional returns an option field: nil when absent, otherwise a pointer to
// the T value.
func GetOptional[T any](g *Getter, name string) *T {
	if g.err != nil {
		return nil
	}
	v, ok := g.s.Get(name)
	if !ok {
		g.err = fmt.Errorf("%w: %s has no field %s", ErrSchemaMismatch, g.s.Name, name)
		return nil
	}
	if v == nil {
		return nil
	}
	t, ok := v.(T)
	if !ok {
		var zero T
		g.err = fmt.Errorf("%w: %s.%s is %T, want %T", ErrSchemaMismatch, g.s.Name, name, v, zero)
		return nil
	}
	return &t
}
