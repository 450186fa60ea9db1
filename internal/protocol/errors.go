// Package protocol implements the frame codec (spec §4.A): VarInt encoding,
// the compressed/uncompressed wire framing, and the AES-128 CFB-8 stream
// encryption toggle, plus the primitive field readers/writers packet bodies
// are built from.
package protocol

import "errors"

// DecodeError is returned by Decoder.Decode for malformed input. All
// variants are fatal and convert into a kick (spec §7).
var (
	ErrMalformedVarInt     = errors.New("malformed varint")
	ErrPayloadTooLarge     = errors.New("payload exceeds maximum frame size")
	ErrDecompressionFailed = errors.New("decompression failed")
	ErrDataLengthMismatch  = errors.New("decompressed length does not match data_length")
)

// EncodeError is returned by Encoder.Append. Also fatal (spec §7).
var (
	ErrCompressionFailed = errors.New("compression failed")
	ErrPacketTooLarge    = errors.New("encoded packet exceeds maximum frame size")
)

// ErrBufferUnderrun is returned by the Reader helpers when a packet body is
// shorter than the field being read requires. Handlers must treat this like
// any other DecodeError.
var ErrBufferUnderrun = errors.New("buffer underrun reading packet field")
