package protocol

import "github.com/udisondev/mcgo/internal/constants"

const (
	varIntContinueBit = 0x80
	varIntSegmentBits = 0x7F
)

// PutVarInt appends the VarInt encoding of v to buf and returns the
// extended slice.
func PutVarInt(buf []byte, v int32) []byte {
	uv := uint32(v)
	for {
		if uv&^varIntSegmentBits == 0 {
			return append(buf, byte(uv))
		}
		buf = append(buf, byte(uv&varIntSegmentBits)|varIntContinueBit)
		uv >>= 7
	}
}

// VarIntSize returns the number of bytes PutVarInt would write for v.
func VarIntSize(v int32) int {
	uv := uint32(v)
	n := 1
	for uv&^varIntSegmentBits != 0 {
		uv >>= 7
		n++
	}
	return n
}

// ReadVarInt decodes a VarInt from the head of data. It returns the decoded
// value and the number of bytes consumed. If data does not yet contain a
// complete VarInt, n is 0 and err is nil - the caller should wait for more
// bytes (this is how Decoder.Decode distinguishes "incomplete frame" from
// "malformed frame"). A VarInt spanning more than constants.VarIntMaxBytes
// is a fatal ErrMalformedVarInt, never an incomplete read.
func ReadVarInt(data []byte) (value int32, n int, err error) {
	var result uint32
	for i := 0; i < constants.VarIntMaxBytes; i++ {
		if i >= len(data) {
			return 0, 0, nil
		}
		b := data[i]
		result |= uint32(b&varIntSegmentBits) << (7 * i)
		if b&varIntContinueBit == 0 {
			return int32(result), i + 1, nil
		}
	}
	return 0, 0, ErrMalformedVarInt
}
