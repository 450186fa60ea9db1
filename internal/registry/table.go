package registry

import (
	"fmt"

	"github.com/udisondev/mcgo/internal/constants"
)

// Decode parses a raw packet body into a typed value. Returned errors are
// DecodeErrors and are fatal (spec §7).
type Decode func(body []byte) (any, error)

// Key identifies one entry in the registry: the state it's valid in, the
// direction it travels, and its numeric ID (spec §4.B - each state has its
// own independent ID space).
type Key struct {
	State     constants.ConnectionState
	Direction constants.Direction
	ID        int32
}

// Table is a (state, direction, id) -> Decode map. The zero Table is not
// usable; use NewTable or Default.
type Table struct {
	entries map[Key]Decode
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{entries: make(map[Key]Decode)}
}

// Register adds a decoder for the given key. It panics on a duplicate
// registration, which is a programming error caught at startup rather than
// a runtime condition.
func (t *Table) Register(state constants.ConnectionState, dir constants.Direction, id int32, decode Decode) {
	key := Key{State: state, Direction: dir, ID: id}
	if _, exists := t.entries[key]; exists {
		panic(fmt.Sprintf("registry: duplicate registration for %+v", key))
	}
	t.entries[key] = decode
}

// Lookup returns the decoder registered for (state, direction, id), if any.
// A miss is not an error: per spec §4.B, unknown IDs in a known state are
// logged and dropped by the caller, never fatal.
func (t *Table) Lookup(state constants.ConnectionState, dir constants.Direction, id int32) (Decode, bool) {
	decode, ok := t.entries[Key{State: state, Direction: dir, ID: id}]
	return decode, ok
}

// Default returns the Table covering every serverbound packet enumerated in
// spec §4.B: the ones that drive state transitions and config setup.
func Default() *Table {
	t := NewTable()
	in := constants.DirectionServerbound

	t.Register(constants.StateHandShake, in, 0x00, decodeHandshake)

	t.Register(constants.StateStatus, in, 0x00, decodeStatusRequest)
	t.Register(constants.StateStatus, in, 0x01, decodePingRequest)

	for _, state := range []constants.ConnectionState{constants.StateLogin, constants.StateTransfer} {
		t.Register(state, in, 0x00, decodeLoginStart)
		t.Register(state, in, 0x01, decodeEncryptionResponse)
		t.Register(state, in, 0x02, decodeLoginPluginResponse)
		t.Register(state, in, 0x03, decodeLoginAcknowledged)
	}

	t.Register(constants.StateConfig, in, 0x00, decodeClientInformation)
	t.Register(constants.StateConfig, in, 0x02, decodePluginMessage)
	t.Register(constants.StateConfig, in, 0x07, decodeKnownPacks)
	t.Register(constants.StateConfig, in, 0x03, decodeAcknowledgeFinishConfig)

	return t
}
