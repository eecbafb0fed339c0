package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/tetratelabs/minwasm/wasm"
	"github.com/tetratelabs/minwasm/wasm/leb128"
)

// reader is the decode cursor: an immutable buffer and the position of the next byte to read. Every read advances the
// position. A reader is owned by one DecodeModule call and passed down by pointer.
type reader struct {
	buf []byte
	pos int
}

var _ io.ByteReader = &reader{}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

// ReadByte implements io.ByteReader, returning io.EOF at the end of the buffer.
func (r *reader) ReadByte() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, io.EOF
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

// readByte is like ReadByte, except the end of the buffer is wasm.ErrModuleTooShort.
func (r *reader) readByte(what string) (byte, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, errUnexpectedEnd(what)
	}
	return b, nil
}

// readBytes returns the next n bytes without copying them.
func (r *reader) readBytes(n uint32, what string) ([]byte, error) {
	if uint64(n) > uint64(r.remaining()) {
		return nil, errUnexpectedEnd(what)
	}
	ret := r.buf[r.pos : r.pos+int(n)]
	r.pos += int(n)
	return ret, nil
}

// readUint32LE reads a fixed width little-endian uint32, such as the version.
func (r *reader) readUint32LE(what string) (uint32, error) {
	b, err := r.readBytes(4, what)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// readU32 reads a LEB128 encoded count, size or index.
func (r *reader) readU32(what string) (uint32, error) {
	v, _, err := leb128.DecodeUint32(r)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, errUnexpectedEnd(what)
		}
		return 0, fmt.Errorf("read %s: %w", what, err)
	}
	return v, nil
}

// readCount reads a vector length. Each element takes at least one byte, so a count larger than what remains is
// rejected before anything is allocated for it.
func (r *reader) readCount(what string) (uint32, error) {
	n, err := r.readU32(what)
	if err != nil {
		return 0, err
	}
	if uint64(n) > uint64(r.remaining()) {
		return 0, fmt.Errorf("%w: %s is %d, but only %d bytes remain", wasm.ErrModuleTooShort, what, n, r.remaining())
	}
	return n, nil
}

func (r *reader) position() int {
	return r.pos
}

func (r *reader) remaining() int {
	return len(r.buf) - r.pos
}

func errUnexpectedEnd(what string) error {
	return fmt.Errorf("%w: unexpected end reading %s: %w", wasm.ErrModuleTooShort, what, io.ErrUnexpectedEOF)
}
