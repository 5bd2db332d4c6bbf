package borsh

import "fmt"

// primitive decodes and encodes one scalar kind.
type primitive struct {
	decode func(r *Reader) (any, error)
	encode func(w *Writer, v any) error
}

// primitives is the fixed dispatch table for scalar kinds. It is populated
// once at package init and never mutated, so concurrent codecs share it.
var primitives = map[Kind]primitive{
	KindU8: {
		decode: func(r *Reader) (any, error) { return r.ReadU8() },
		encode: func(w *Writer, v any) error {
			x, ok := v.(uint8)
			if !ok {
				return mismatch(KindU8, v)
			}
			w.WriteU8(x)
			return nil
		},
	},
	KindU16: {
		decode: func(r *Reader) (any, error) { return r.ReadU16() },
		encode: func(w *Writer, v any) error {
			x, ok := v.(uint16)
			if !ok {
				return mismatch(KindU16, v)
			}
			w.WriteU16(x)
			return nil
		},
	},
	KindU32: {
		decode: func(r *Reader) (any, error) { return r.ReadU32() },
		encode: func(w *Writer, v any) error {
			x, ok := v.(uint32)
			if !ok {
				return mismatch(KindU32, v)
			}
			w.WriteU32(x)
			return nil
		},
	},
	KindU64: {
		decode: func(r *Reader) (any, error) { return r.ReadU64() },
		encode: func(w *Writer, v any) error {
			x, ok := v.(uint64)
			if !ok {
				return mismatch(KindU64, v)
			}
			w.WriteU64(x)
			return nil
		},
	},
	KindAddress: {
		decode: func(r *Reader) (any, error) { return r.ReadAddress() },
		encode: func(w *Writer, v any) error {
			x, ok := v.([AddressLength]byte)
			if !ok {
				return mismatch(KindAddress, v)
			}
			w.WriteAddress(x)
			return nil
		},
	},
	KindString: {
		decode: func(r *Reader) (any, error) { return r.ReadString() },
		encode: func(w *Writer, v any) error {
			x, ok := v.(string)
			if !ok {
				return mismatch(KindString, v)
			}
			w.WriteString(x)
			return nil
		},
	},
}

func mismatch(k Kind, v any) error {
	return fmt.Errorf("%w: %s field holds %T", ErrSchemaMismatch, k, v)
}
