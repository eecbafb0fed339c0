// Package leb128 implements the unsigned LEB128 variable-length integer encoding used for counts, sizes and indices
// of the WebAssembly binary format.
//
// See https://www.w3.org/TR/wasm-core-1/#integers%E2%91%A4
package leb128

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

const (
	maxVarintLen32 = 5
	continuation   = 0x80
	payload        = 0x7f
)

// ErrOverflow32 is returned when an encoding doesn't fit in 32 bits, either by length or by its final byte.
var ErrOverflow32 = errors.New("overflows a 32-bit integer")

// EncodeUint32 encodes the value into a buffer in LEB128 format
//
// See https://en.wikipedia.org/wiki/LEB128#Encode_unsigned_integer
func EncodeUint32(value uint32) (buf []byte) {
	// This is effectively a do/while loop where we take 7 bits of the value and encode them until it is zero.
	for {
		// Take 7 remaining low-order bits from the value into b.
		b := uint8(value & payload)
		value = value >> 7

		// If there are remaining bits, the value won't be zero: Set the high-
		// order bit to tell the reader there are more bytes in this uint.
		if value != 0 {
			b |= continuation
		}

		// Append b into the buffer
		buf = append(buf, b)
		if b&continuation == 0 {
			return buf
		}
	}
}

// DecodeUint32 reads a LEB128 encoded uint32 from r, returning the value and the count of bytes read.
//
// A reader that ends before the last byte returns io.ErrUnexpectedEOF.
func DecodeUint32(r io.ByteReader) (ret uint32, bytesRead uint64, err error) {
	for shift := 0; ; shift += 7 {
		b, err := r.ReadByte()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return 0, bytesRead, fmt.Errorf("readByte failed: %w", err)
		}
		bytesRead++

		if bytesRead == maxVarintLen32 && b > 0x0f {
			// The fifth byte carries the top 4 bits. Anything else, including a continuation, is out of range.
			return 0, bytesRead, ErrOverflow32
		}

		ret |= uint32(b&payload) << shift
		if b&continuation == 0 {
			return ret, bytesRead, nil
		}
	}
}

// LoadUint32 is like DecodeUint32, except it reads from the beginning of buf.
func LoadUint32(buf []byte) (ret uint32, bytesRead uint64, err error) {
	return DecodeUint32(bytes.NewReader(buf))
}
