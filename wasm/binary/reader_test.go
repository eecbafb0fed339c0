package binary

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tetratelabs/minwasm/wasm"
	"github.com/tetratelabs/minwasm/wasm/leb128"
)

func TestReader(t *testing.T) {
	r := newReader([]byte{0x01, 0x00, 0x00, 0x00, 0xac, 0x02, 'a', 'b', 0x7f})

	v, err := r.readUint32LE("version")
	require.NoError(t, err)
	require.Equal(t, uint32(1), v)
	require.Equal(t, 4, r.position())

	n, err := r.readU32("size")
	require.NoError(t, err)
	require.Equal(t, uint32(300), n)
	require.Equal(t, 6, r.position())

	b, err := r.readBytes(2, "name")
	require.NoError(t, err)
	require.Equal(t, []byte("ab"), b)

	last, err := r.readByte("type")
	require.NoError(t, err)
	require.Equal(t, byte(0x7f), last)
	require.Equal(t, 0, r.remaining())

	_, err = r.ReadByte()
	require.Equal(t, io.EOF, err)
}

func TestReader_Errors(t *testing.T) {
	tests := []struct {
		name        string
		read        func(r *reader) error
		input       []byte
		expectedErr error
	}{
		{
			name: "readByte at end",
			read: func(r *reader) error {
				_, err := r.readByte("id")
				return err
			},
			expectedErr: io.ErrUnexpectedEOF,
		},
		{
			name: "readBytes past end",
			read: func(r *reader) error {
				_, err := r.readBytes(3, "name")
				return err
			},
			input:       []byte{'a', 'b'},
			expectedErr: wasm.ErrModuleTooShort,
		},
		{
			name: "readUint32LE past end",
			read: func(r *reader) error {
				_, err := r.readUint32LE("version")
				return err
			},
			input:       []byte{0x01, 0x00},
			expectedErr: wasm.ErrModuleTooShort,
		},
		{
			name: "readU32 truncated",
			read: func(r *reader) error {
				_, err := r.readU32("size")
				return err
			},
			input:       []byte{0x80, 0x80},
			expectedErr: wasm.ErrModuleTooShort,
		},
		{
			name: "readU32 overflow",
			read: func(r *reader) error {
				_, err := r.readU32("size")
				return err
			},
			input:       []byte{0xff, 0xff, 0xff, 0xff, 0x7f},
			expectedErr: leb128.ErrOverflow32,
		},
		{
			name: "readCount larger than remaining",
			read: func(r *reader) error {
				_, err := r.readCount("type count")
				return err
			},
			input:       []byte{0x03, 0x60, 0x60},
			expectedErr: wasm.ErrModuleTooShort,
		},
	}

	for _, tt := range tests {
		tc := tt

		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, tc.read(newReader(tc.input)), tc.expectedErr)
		})
	}
}

func TestReader_readBytesDoesNotAdvanceOnError(t *testing.T) {
	r := newReader([]byte{'a'})
	_, err := r.readBytes(2, "name")
	require.Error(t, err)
	require.Equal(t, 0, r.position())
}
