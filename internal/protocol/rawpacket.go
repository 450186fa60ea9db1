package protocol

// RawPacket is a decoded-but-unparsed protocol frame: a packet ID and its
// body bytes, ready for registry lookup (spec §3, §4.B).
type RawPacket struct {
	ID      int32
	Payload []byte
}
