package protocol

import (
	"bytes"
	"compress/zlib"
	"crypto/cipher"
	"fmt"
	"io"

	"github.com/udisondev/mcgo/internal/constants"
)

// Decoder turns a stream of bytes arriving on a connection into a sequence
// of RawPacket frames (spec §4.A). It is not safe for concurrent use; a
// Connection owns exactly one Decoder and drives it from a single reader
// goroutine.
type Decoder struct {
	buf []byte

	cipher      cipher.Stream
	compression int // -1 disables compression, per vanilla convention
}

// NewDecoder returns a Decoder with compression and encryption disabled.
func NewDecoder() *Decoder {
	return &Decoder{compression: -1}
}

// EnableEncryption switches the decoder to decrypt every byte queued from
// this point on with stream. It is a one-way, one-time transition: vanilla
// Minecraft never disables encryption once EncryptionResponse completes.
func (d *Decoder) EnableEncryption(stream cipher.Stream) {
	d.cipher = stream
}

// SetCompression sets the compression threshold. A negative threshold
// disables compression entirely; this mirrors the wire convention where
// dataLength == 0 signals an individual uncompressed packet.
func (d *Decoder) SetCompression(threshold int) {
	d.compression = threshold
}

// Queue appends newly-read bytes to the decoder's internal buffer,
// decrypting them first if encryption is enabled. Queue never blocks and
// never parses; call Decode afterward to drain complete frames.
func (d *Decoder) Queue(data []byte) {
	if len(data) == 0 {
		return
	}
	if d.cipher != nil {
		plain := make([]byte, len(data))
		d.cipher.XORKeyStream(plain, data)
		d.buf = append(d.buf, plain...)
		return
	}
	d.buf = append(d.buf, data...)
}

// Decode attempts to parse one complete frame from the head of the buffered
// data. If the buffer does not yet contain a full frame, it returns
// (nil, false, nil) - the caller should Queue more bytes and try again. A
// non-nil error is always fatal and should be treated as in spec §7.
func (d *Decoder) Decode() (*RawPacket, bool, error) {
	length, lengthSize, err := ReadVarInt(d.buf)
	if err != nil {
		return nil, false, err
	}
	if lengthSize == 0 {
		return nil, false, nil
	}
	if length < 0 || length > constants.MaxUncompressedPayload {
		return nil, false, fmt.Errorf("%w: frame length %d", ErrPayloadTooLarge, length)
	}

	frameEnd := lengthSize + int(length)
	if len(d.buf) < frameEnd {
		return nil, false, nil
	}

	body := d.buf[lengthSize:frameEnd]
	d.buf = d.buf[frameEnd:]

	var packet *RawPacket
	if d.compression >= 0 {
		packet, err = decodeCompressedBody(body)
	} else {
		packet, err = decodeUncompressedBody(body)
	}
	if err != nil {
		return nil, false, err
	}
	return packet, true, nil
}

func decodeUncompressedBody(body []byte) (*RawPacket, error) {
	id, n, err := ReadVarInt(body)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: missing packet id", ErrMalformedVarInt)
	}
	return &RawPacket{ID: id, Payload: body[n:]}, nil
}

func decodeCompressedBody(body []byte) (*RawPacket, error) {
	dataLength, n, err := ReadVarInt(body)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: missing data length", ErrMalformedVarInt)
	}
	rest := body[n:]

	// dataLength == 0 means this individual packet was sent uncompressed
	// despite compression being enabled for the connection.
	if dataLength == 0 {
		return decodeUncompressedBody(rest)
	}
	if dataLength < 0 || dataLength > constants.MaxUncompressedPayload {
		return nil, fmt.Errorf("%w: decompressed length %d", ErrPayloadTooLarge, dataLength)
	}

	zr, err := zlib.NewReader(bytes.NewReader(rest))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompressionFailed, err)
	}
	defer func() { _ = zr.Close() }()

	uncompressed, err := io.ReadAll(io.LimitReader(zr, int64(dataLength)+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompressionFailed, err)
	}
	if int32(len(uncompressed)) != dataLength {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDataLengthMismatch, len(uncompressed), dataLength)
	}

	return decodeUncompressedBody(uncompressed)
}

// Encoder serializes RawPacket frames for writing to a connection, applying
// the same compression and encryption toggles as Decoder but in reverse
// (spec §4.A).
type Encoder struct {
	cipher      cipher.Stream
	compression int
	level       int
}

// NewEncoder returns an Encoder with compression and encryption disabled.
func NewEncoder() *Encoder {
	return &Encoder{compression: -1, level: zlib.DefaultCompression}
}

// EnableEncryption switches the encoder to encrypt every frame produced from
// this point on with stream.
func (e *Encoder) EnableEncryption(stream cipher.Stream) {
	e.cipher = stream
}

// SetCompression sets the compression threshold; a negative value disables
// compression.
func (e *Encoder) SetCompression(threshold int) {
	e.compression = threshold
}

// SetCompressionLevel sets the zlib compression level used once compression
// is enabled. The source accepts a level alongside the threshold without
// specifying its effect (spec §9 open question); this passes it straight
// through to the compressor. An invalid level falls back to
// zlib.DefaultCompression.
func (e *Encoder) SetCompressionLevel(level int) {
	if _, err := zlib.NewWriterLevel(io.Discard, level); err != nil {
		e.level = zlib.DefaultCompression
		return
	}
	e.level = level
}

// Append serializes packet into its wire frame, appends it to buf, and
// returns the extended slice. Frames are encrypted in place as the very last
// step, after length-prefixing, matching the order EnableEncryption takes
// effect on the wire (spec §4.A).
func (e *Encoder) Append(buf []byte, packet *RawPacket) ([]byte, error) {
	var frame []byte
	var err error
	if e.compression >= 0 {
		frame, err = e.encodeCompressed(packet)
	} else {
		frame, err = encodeUncompressed(packet)
	}
	if err != nil {
		return nil, err
	}

	if e.cipher != nil {
		cipherText := make([]byte, len(frame))
		e.cipher.XORKeyStream(cipherText, frame)
		frame = cipherText
	}

	return append(buf, frame...), nil
}

func encodeUncompressed(packet *RawPacket) ([]byte, error) {
	payload := PutVarInt(nil, packet.ID)
	payload = append(payload, packet.Payload...)
	if len(payload) > constants.MaxUncompressedPayload {
		return nil, fmt.Errorf("%w: %d bytes", ErrPacketTooLarge, len(payload))
	}

	frame := PutVarInt(nil, int32(len(payload)))
	return append(frame, payload...), nil
}

func (e *Encoder) encodeCompressed(packet *RawPacket) ([]byte, error) {
	uncompressed := PutVarInt(nil, packet.ID)
	uncompressed = append(uncompressed, packet.Payload...)

	if len(uncompressed) < e.compression {
		// Below threshold: send uncompressed with dataLength = 0.
		content := PutVarInt(nil, 0)
		content = append(content, uncompressed...)
		if len(content) > constants.MaxUncompressedPayload {
			return nil, fmt.Errorf("%w: %d bytes", ErrPacketTooLarge, len(content))
		}
		frame := PutVarInt(nil, int32(len(content)))
		return append(frame, content...), nil
	}

	var compressed bytes.Buffer
	zw, err := zlib.NewWriterLevel(&compressed, e.level)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompressionFailed, err)
	}
	if _, err := zw.Write(uncompressed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompressionFailed, err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompressionFailed, err)
	}

	content := PutVarInt(nil, int32(len(uncompressed)))
	content = append(content, compressed.Bytes()...)
	if len(content) > constants.MaxUncompressedPayload {
		return nil, fmt.Errorf("%w: %d bytes", ErrPacketTooLarge, len(content))
	}
	frame := PutVarInt(nil, int32(len(content)))
	return append(frame, content...), nil
}
