package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarInt_RoundTrip(t *testing.T) {
	values := []int32{0, 1, 2, 127, 128, 255, 2097151, 2147483647, -1, -2147483648}
	for _, v := range values {
		buf := PutVarInt(nil, v)
		assert.Len(t, buf, VarIntSize(v), "VarIntSize(%d) disagrees with PutVarInt's output length", v)

		got, n, err := ReadVarInt(buf)
		require.NoError(t, err)
		assert.Equal(t, len(buf), n, "ReadVarInt consumed the wrong number of bytes")
		assert.Equal(t, v, got, "ReadVarInt round trip mismatch")
	}
}

func TestReadVarInt_KnownEncodings(t *testing.T) {
	// Values from the Minecraft protocol wiki's VarInt examples.
	cases := []struct {
		bytes []byte
		want  int32
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x01}, 1},
		{[]byte{0x02}, 2},
		{[]byte{0x7f}, 127},
		{[]byte{0x80, 0x01}, 128},
		{[]byte{0xff, 0x01}, 255},
		{[]byte{0xff, 0xff, 0x7f}, 2097151},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0x07}, 2147483647},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0x0f}, -1},
		{[]byte{0x80, 0x80, 0x80, 0x80, 0x08}, -2147483648},
	}
	for _, tc := range cases {
		got, n, err := ReadVarInt(tc.bytes)
		require.NoError(t, err)
		assert.Equal(t, len(tc.bytes), n)
		assert.Equal(t, tc.want, got)
	}
}

func TestReadVarInt_Incomplete(t *testing.T) {
	// 0x80 alone has its continuation bit set; no terminating byte yet.
	got, n, err := ReadVarInt([]byte{0x80})
	require.NoError(t, err, "incomplete data should return nil error (wait for more bytes)")
	assert.Zero(t, n)
	assert.Zero(t, got)
}

func TestReadVarInt_MalformedTooLong(t *testing.T) {
	// Six continuation bytes - exceeds the 5-byte cap (spec §4.A).
	data := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}
	_, _, err := ReadVarInt(data)
	assert.ErrorIs(t, err, ErrMalformedVarInt)
}
