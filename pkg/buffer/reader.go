// Package buffer provides a bounds-checked cursor over an inbound command chunk.
package buffer

import (
	"encoding/binary"
	"errors"
)

// MaxPathEntries bounds the number of entries ReadPath will accept.
const MaxPathEntries = 10

// ErrOutOfData is returned when a read needs more bytes than remain.
var ErrOutOfData = errors.New("buffer: out of data")

// ErrPathTooLong is returned for a path prefix announcing more than MaxPathEntries entries.
var ErrPathTooLong = errors.New("buffer: path too long")

// Reader reads primitives from a byte slice. A failed read leaves the
// offset where it was.
type Reader struct {
	buf    []byte
	offset int
}

func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

func (r *Reader) Remaining() int { return len(r.buf) - r.offset }

// ReadFixed returns the next n bytes. The result aliases the underlying buffer.
func (r *Reader) ReadFixed(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, ErrOutOfData
	}
	v := r.buf[r.offset : r.offset+n : r.offset+n]
	r.offset += n
	return v, nil
}

func (r *Reader) ReadU8() (uint8, error) {
	if r.Remaining() < 1 {
		return 0, ErrOutOfData
	}
	v := r.buf[r.offset]
	r.offset++
	return v, nil
}

// ReadU32 reads a big-endian uint32.
func (r *Reader) ReadU32() (uint32, error) {
	if r.Remaining() < 4 {
		return 0, ErrOutOfData
	}
	v := binary.BigEndian.Uint32(r.buf[r.offset:])
	r.offset += 4
	return v, nil
}

// ReadPath reads count big-endian uint32 derivation indices.
func (r *Reader) ReadPath(count int) ([]uint32, error) {
	if count < 0 || count > MaxPathEntries {
		return nil, ErrPathTooLong
	}
	if count*4 > r.Remaining() {
		return nil, ErrOutOfData
	}
	path := make([]uint32, count)
	for i := range path {
		path[i], _ = r.ReadU32()
	}
	return path, nil
}

// ReadPathPrefix reads a one byte entry count followed by the entries.
// On failure nothing is consumed, including the count byte.
func (r *Reader) ReadPathPrefix() ([]uint32, error) {
	start := r.offset
	n, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	path, err := r.ReadPath(int(n))
	if err != nil {
		r.offset = start
		return nil, err
	}
	return path, nil
}
