package borsh

import (
	"encoding/binary"
	"unicode/utf8"
)

// AddressLength is the width of the address primitive.
const AddressLength = 32

// Reader decodes primitives from a byte slice, advancing an internal cursor.
// It never reads past the end of the slice and never modifies it.
type Reader struct {
	buf         []byte
	off         int
	lenientUTF8 bool
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithLenientUTF8 accepts string bytes that are not valid UTF-8 instead of
// failing with ErrInvalidUTF8.
func WithLenientUTF8() ReaderOption {
	return func(r *Reader) {
		r.lenientUTF8 = true
	}
}

// NewReader wraps buf. The Reader borrows buf; returned byte slices are copies.
func NewReader(buf []byte, opts ...ReaderOption) *Reader {
	r := &Reader{buf: buf}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Offset returns the cursor position.
func (r *Reader) Offset() int {
	return r.off
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

func (r *Reader) take(n int, what string) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, &DecodeError{Offset: r.off, What: what, Err: ErrUnexpectedEndOfBuffer}
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// ReadU8 reads one byte.
func (r *Reader) ReadU8() (uint8, error) {
	b, err := r.take(1, "u8")
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU16 reads a little-endian uint16.
func (r *Reader) ReadU16() (uint16, error) {
	b, err := r.take(2, "u16")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadU32 reads a little-endian uint32.
func (r *Reader) ReadU32() (uint32, error) {
	b, err := r.take(4, "u32")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadU64 reads a little-endian uint64.
func (r *Reader) ReadU64() (uint64, error) {
	b, err := r.take(8, "u64")
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadPresence reads an option presence byte. Values other than 0 and 1 fail
// with ErrSchemaMismatch.
func (r *Reader) ReadPresence() (bool, error) {
	start := r.off
	b, err := r.take(1, "option")
	if err != nil {
		return false, err
	}
	switch b[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		r.off = start
		return false, &DecodeError{Offset: start, What: "option", Err: ErrSchemaMismatch}
	}
}

// ReadFixed reads exactly n raw bytes.
func (r *Reader) ReadFixed(n int) ([]byte, error) {
	b, err := r.take(n, "fixed_bytes")
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// ReadAddress reads a 32-byte address with no transformation.
func (r *Reader) ReadAddress() ([AddressLength]byte, error) {
	var a [AddressLength]byte
	b, err := r.take(AddressLength, "address")
	if err != nil {
		return a, err
	}
	copy(a[:], b)
	return a, nil
}

// ReadString reads a u32 length prefix and that many bytes. NUL padding is
// returned as-is.
func (r *Reader) ReadString() (string, error) {
	start := r.off
	n, err := r.ReadU32()
	if err != nil {
		return "", err
	}
	b, err := r.take(int(n), "string")
	if err != nil {
		r.off = start
		return "", err
	}
	if !r.lenientUTF8 && !utf8.Valid(b) {
		r.off = start
		return "", &DecodeError{Offset: start, What: "string", Err: ErrInvalidUTF8}
	}
	return string(b), nil
}

// ReadLen reads a u32 collection length.
func (r *Reader) ReadLen() (int, error) {
	n, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
