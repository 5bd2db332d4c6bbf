package borsh

import "encoding/binary"

// Writer appends encoded primitives to a growable buffer.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with capacity for sizeHint bytes.
func NewWriter(sizeHint int) *Writer {
	return &Writer{buf: make([]byte, 0, sizeHint)}
}

// Bytes returns the encoded buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return len(w.buf)
}

func (w *Writer) WriteU8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *Writer) WriteU16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

func (w *Writer) WriteU32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *Writer) WriteU64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

// WritePresence writes an option presence byte.
func (w *Writer) WritePresence(present bool) {
	if present {
		w.WriteU8(1)
		return
	}
	w.WriteU8(0)
}

// WriteFixed appends b with no prefix.
func (w *Writer) WriteFixed(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteAddress appends 32 raw address bytes.
func (w *Writer) WriteAddress(a [AddressLength]byte) {
	w.buf = append(w.buf, a[:]...)
}

// WriteString writes a u32 length prefix followed by the string bytes.
func (w *Writer) WriteString(s string) {
	w.WriteU32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteLen writes a u32 collection length.
func (w *Writer) WriteLen(n int) {
	w.WriteU32(uint32(n))
}
