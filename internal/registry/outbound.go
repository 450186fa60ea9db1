package registry

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/udisondev/mcgo/internal/model"
	"github.com/udisondev/mcgo/internal/protocol"
)

// Clientbound packet IDs for the subset spec §6 names. These track a recent
// Java Edition generation; the registry does not need to match any specific
// client version beyond internal consistency between encoder and decoder.
const (
	idStatusResponse = 0x00
	idPongResponse   = 0x01

	idEncryptionRequest = 0x01
	idLoginSuccess      = 0x02
	idSetCompression    = 0x03
	idLoginDisconnect   = 0x00

	idConfigDisconnect    = 0x02
	idFinishConfiguration = 0x03

	idPlayLogin           = 0x2B
	idPlayerAbilities     = 0x38
	idSynchronizePosition = 0x40
	idPlayerInfoUpdate    = 0x3F
	idSpawnEntity         = 0x01
	idSetEntityMetadata   = 0x58
	idGameEvent           = 0x22
	idChunkData           = 0x27
	idRemoveEntities      = 0x42
	idRemovePlayerInfo    = 0x3E
	idPlayDisconnect      = 0x1D
)

func jsonText(s string) string {
	b, err := json.Marshal(map[string]string{"text": s})
	if err != nil {
		// Marshaling a plain string map cannot fail; fall back defensively.
		return `{"text":""}`
	}
	return string(b)
}

// NewStatusResponse builds the Status-state server-list-ping reply.
func NewStatusResponse(motdJSON string) *protocol.RawPacket {
	w := protocol.NewWriter()
	w.WriteString(motdJSON)
	return &protocol.RawPacket{ID: idStatusResponse, Payload: w.Bytes()}
}

// NewPongResponse echoes a PingRequest's payload back to the client.
func NewPongResponse(payload int64) *protocol.RawPacket {
	w := protocol.NewWriter()
	w.WriteInt64(payload)
	return &protocol.RawPacket{ID: idPongResponse, Payload: w.Bytes()}
}

// NewEncryptionRequest asks the client to encrypt a shared secret under the
// server's RSA public key.
func NewEncryptionRequest(serverID string, publicKeyDER, verifyToken []byte) *protocol.RawPacket {
	w := protocol.NewWriter()
	w.WriteString(serverID)
	w.WriteVarInt(int32(len(publicKeyDER)))
	w.WriteBytes(publicKeyDER)
	w.WriteVarInt(int32(len(verifyToken)))
	w.WriteBytes(verifyToken)
	w.WriteBool(true) // authenticate: request the client sign its session
	return &protocol.RawPacket{ID: idEncryptionRequest, Payload: w.Bytes()}
}

// NewSetCompression enables compressed framing as of the byte immediately
// following this packet (spec §4.C).
func NewSetCompression(threshold int32) *protocol.RawPacket {
	w := protocol.NewWriter()
	w.WriteVarInt(threshold)
	return &protocol.RawPacket{ID: idSetCompression, Payload: w.Bytes()}
}

// NewLoginSuccess finalizes login with the resolved GameProfile.
func NewLoginSuccess(profile model.GameProfile) *protocol.RawPacket {
	w := protocol.NewWriter()
	w.WriteUUID(profile.UUID)
	w.WriteString(profile.Name)
	w.WriteVarInt(int32(len(profile.Properties)))
	for _, p := range profile.Properties {
		w.WriteString(p.Name)
		w.WriteString(p.Value)
		if p.Signature != "" {
			w.WriteBool(true)
			w.WriteString(p.Signature)
		} else {
			w.WriteBool(false)
		}
	}
	return &protocol.RawPacket{ID: idLoginSuccess, Payload: w.Bytes()}
}

func disconnectPacket(id int32, reason string) *protocol.RawPacket {
	w := protocol.NewWriter()
	w.WriteString(jsonText(reason))
	return &protocol.RawPacket{ID: id, Payload: w.Bytes()}
}

// NewLoginDisconnect builds the Login-state kick packet (JSON string body).
func NewLoginDisconnect(reason string) *protocol.RawPacket {
	return disconnectPacket(idLoginDisconnect, reason)
}

// NewConfigDisconnect builds the Config-state kick packet.
func NewConfigDisconnect(reason string) *protocol.RawPacket {
	return disconnectPacket(idConfigDisconnect, reason)
}

// NewPlayDisconnect builds the Play-state kick packet.
func NewPlayDisconnect(reason string) *protocol.RawPacket {
	return disconnectPacket(idPlayDisconnect, reason)
}

// NewFinishConfiguration tells the client configuration is complete; its
// acknowledgment (AcknowledgeFinishConfig) transitions the connection to
// Play (spec §4.B).
func NewFinishConfiguration() *protocol.RawPacket {
	return &protocol.RawPacket{ID: idFinishConfiguration}
}

// PlayLoginParams carries the fields the Play "Login" packet needs.
type PlayLoginParams struct {
	EntityID           int32
	Hardcore           bool
	DimensionNames     []string
	MaxPlayers         int32
	ViewDistance       int32
	SimulationDistance int32
	GameMode           int8
	DimensionName      string
}

// NewPlayLogin builds the Play-state Login packet that begins spawn_player
// (spec §4.E). Field layout is simplified to what the core needs; it omits
// vanilla's registry-tag payload, which is out of the connection core's
// scope.
func NewPlayLogin(p PlayLoginParams) *protocol.RawPacket {
	w := protocol.NewWriter()
	w.WriteInt32(p.EntityID)
	w.WriteBool(p.Hardcore)
	w.WriteVarInt(int32(len(p.DimensionNames)))
	for _, d := range p.DimensionNames {
		w.WriteString(d)
	}
	w.WriteVarInt(p.MaxPlayers)
	w.WriteVarInt(p.ViewDistance)
	w.WriteVarInt(p.SimulationDistance)
	w.WriteBool(false) // reduced debug info
	w.WriteBool(true)  // show death screen
	w.WriteBool(false) // limited crafting
	w.WriteString(p.DimensionName)
	w.WriteByte(byte(p.GameMode))
	return &protocol.RawPacket{ID: idPlayLogin, Payload: w.Bytes()}
}

// NewPlayerAbilities builds the default-abilities packet sent right after
// Login in spawn_player (spec §4.E).
func NewPlayerAbilities(flags byte, flyingSpeed, fovModifier float32) *protocol.RawPacket {
	w := protocol.NewWriter()
	w.WriteByte(flags)
	w.WriteFloat32(flyingSpeed)
	w.WriteFloat32(fovModifier)
	return &protocol.RawPacket{ID: idPlayerAbilities, Payload: w.Bytes()}
}

// NewSynchronizePlayerPosition teleports the client to pos.
func NewSynchronizePlayerPosition(pos model.Position, teleportID int32) *protocol.RawPacket {
	w := protocol.NewWriter()
	w.WriteFloat64(pos.X)
	w.WriteFloat64(pos.Y)
	w.WriteFloat64(pos.Z)
	w.WriteFloat64(0) // velocity X/Y/Z unused by the connection core
	w.WriteFloat64(0)
	w.WriteFloat64(0)
	w.WriteFloat32(pos.Yaw)
	w.WriteFloat32(pos.Pitch)
	w.WriteInt32(0) // relative-flags bitfield: all absolute
	w.WriteVarInt(teleportID)
	return &protocol.RawPacket{ID: idSynchronizePosition, Payload: w.Bytes()}
}

// PlayerInfoEntry is one player's AddPlayer+UpdateListed entry for
// PlayerInfoUpdate.
type PlayerInfoEntry struct {
	Profile  model.GameProfile
	GameMode int8
	Listed   bool
}

// NewPlayerInfoUpdateAdd builds a PlayerInfoUpdate carrying the
// AddPlayer|UpdateListed actions for entries (spec §4.E).
func NewPlayerInfoUpdateAdd(entries []PlayerInfoEntry) *protocol.RawPacket {
	w := protocol.NewWriter()
	w.WriteByte(0x03) // actions bitset: AddPlayer(0x01) | UpdateListed(0x02)
	w.WriteVarInt(int32(len(entries)))
	for _, e := range entries {
		w.WriteUUID(e.Profile.UUID)
		// AddPlayer action
		w.WriteString(e.Profile.Name)
		w.WriteVarInt(int32(len(e.Profile.Properties)))
		for _, p := range e.Profile.Properties {
			w.WriteString(p.Name)
			w.WriteString(p.Value)
			if p.Signature != "" {
				w.WriteBool(true)
				w.WriteString(p.Signature)
			} else {
				w.WriteBool(false)
			}
		}
		// UpdateListed action
		w.WriteBool(e.Listed)
	}
	return &protocol.RawPacket{ID: idPlayerInfoUpdate, Payload: w.Bytes()}
}

// NewSpawnEntity builds the SpawnEntity packet used to introduce a player
// entity to other clients (spec §4.E).
func NewSpawnEntity(entityID int32, uuidVal uuid.UUID, entityType int32, pos model.Position) *protocol.RawPacket {
	w := protocol.NewWriter()
	w.WriteVarInt(entityID)
	w.WriteUUID(uuidVal)
	w.WriteVarInt(entityType)
	w.WriteFloat64(pos.X)
	w.WriteFloat64(pos.Y)
	w.WriteFloat64(pos.Z)
	w.WriteByte(byte(int8(pos.Pitch * 256 / 360)))
	w.WriteByte(byte(int8(pos.Yaw * 256 / 360)))
	w.WriteByte(byte(int8(pos.Yaw * 256 / 360))) // head yaw
	w.WriteVarInt(0)                             // data
	w.WriteUint16(0)                             // velocity X/Y/Z
	w.WriteUint16(0)
	w.WriteUint16(0)
	return &protocol.RawPacket{ID: idSpawnEntity, Payload: w.Bytes()}
}

// NewSetEntityMetadata carries a player's skin-parts byte (metadata index 17
// in vanilla's entity metadata table) as a single-entry metadata packet.
func NewSetEntityMetadata(entityID int32, skinParts uint8) *protocol.RawPacket {
	w := protocol.NewWriter()
	w.WriteVarInt(entityID)
	w.WriteByte(17) // index: player skin parts
	w.WriteVarInt(0) // type: byte
	w.WriteByte(skinParts)
	w.WriteByte(0xff) // terminator
	return &protocol.RawPacket{ID: idSetEntityMetadata, Payload: w.Bytes()}
}

// GameEventStartWaitingChunks is the event ID for "start waiting for level
// chunks" in vanilla's GameEvent packet.
const GameEventStartWaitingChunks = 13

// NewGameEvent builds a GameEvent packet.
func NewGameEvent(event int8, value float32) *protocol.RawPacket {
	w := protocol.NewWriter()
	w.WriteByte(byte(event))
	w.WriteFloat32(value)
	return &protocol.RawPacket{ID: idGameEvent, Payload: w.Bytes()}
}

// NewChunkData wraps a pre-encoded chunk column payload (produced by the
// level collaborator) in its ChunkData frame.
func NewChunkData(chunkX, chunkZ int32, data []byte) *protocol.RawPacket {
	w := protocol.NewWriter()
	w.WriteInt32(chunkX)
	w.WriteInt32(chunkZ)
	w.WriteBytes(data)
	return &protocol.RawPacket{ID: idChunkData, Payload: w.Bytes()}
}

// NewRemoveEntities builds the packet that despawns entities for clients
// when a player disconnects.
func NewRemoveEntities(entityIDs []int32) *protocol.RawPacket {
	w := protocol.NewWriter()
	w.WriteVarInt(int32(len(entityIDs)))
	for _, id := range entityIDs {
		w.WriteVarInt(id)
	}
	return &protocol.RawPacket{ID: idRemoveEntities, Payload: w.Bytes()}
}

// NewRemovePlayerInfo builds the packet that removes tab-list entries when a
// player disconnects.
func NewRemovePlayerInfo(uuids []uuid.UUID) *protocol.RawPacket {
	w := protocol.NewWriter()
	w.WriteVarInt(int32(len(uuids)))
	for _, id := range uuids {
		w.WriteUUID(id)
	}
	return &protocol.RawPacket{ID: idRemovePlayerInfo, Payload: w.Bytes()}
}
