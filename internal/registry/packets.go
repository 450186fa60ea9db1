// Package registry implements the packet registry (spec §4.B): a
// (state, direction, id) -> typed decoder table. Handling of what a decoded
// packet does belongs to internal/connection; this package only knows how
// to turn bytes into a typed Go value.
package registry

import (
	"github.com/google/uuid"
	"github.com/udisondev/mcgo/internal/constants"
	"github.com/udisondev/mcgo/internal/model"
	"github.com/udisondev/mcgo/internal/protocol"
)

// Handshake is HandShake state, serverbound ID 0x00.
type Handshake struct {
	ProtocolVersion int32
	ServerAddress   string
	ServerPort      uint16
	NextStateRaw    int32
}

func decodeHandshake(body []byte) (any, error) {
	r := protocol.NewReader(body)
	var p Handshake
	var err error
	if p.ProtocolVersion, err = r.ReadVarInt(); err != nil {
		return nil, err
	}
	if p.ServerAddress, err = r.ReadString(); err != nil {
		return nil, err
	}
	if p.ServerPort, err = r.ReadUint16(); err != nil {
		return nil, err
	}
	if p.NextStateRaw, err = r.ReadVarInt(); err != nil {
		return nil, err
	}
	return &p, nil
}

// StatusRequest is Status state, serverbound ID 0x00. Empty body.
type StatusRequest struct{}

func decodeStatusRequest([]byte) (any, error) { return &StatusRequest{}, nil }

// PingRequest is Status state, serverbound ID 0x01.
type PingRequest struct {
	Payload int64
}

func decodePingRequest(body []byte) (any, error) {
	r := protocol.NewReader(body)
	v, err := r.ReadInt64()
	if err != nil {
		return nil, err
	}
	return &PingRequest{Payload: v}, nil
}

// LoginStart is Login/Transfer state, serverbound ID 0x00.
type LoginStart struct {
	Name string
	UUID uuid.UUID
}

func decodeLoginStart(body []byte) (any, error) {
	r := protocol.NewReader(body)
	var p LoginStart
	var err error
	if p.Name, err = r.ReadString(); err != nil {
		return nil, err
	}
	if p.UUID, err = r.ReadUUID(); err != nil {
		return nil, err
	}
	return &p, nil
}

// EncryptionResponse is Login/Transfer state, serverbound ID 0x01.
type EncryptionResponse struct {
	EncryptedSharedSecret []byte
	EncryptedVerifyToken  []byte
}

func decodeEncryptionResponse(body []byte) (any, error) {
	r := protocol.NewReader(body)
	var p EncryptionResponse
	n, err := r.ReadVarInt()
	if err != nil {
		return nil, err
	}
	if p.EncryptedSharedSecret, err = r.ReadBytes(int(n)); err != nil {
		return nil, err
	}
	if n, err = r.ReadVarInt(); err != nil {
		return nil, err
	}
	if p.EncryptedVerifyToken, err = r.ReadBytes(int(n)); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoginPluginResponse is Login/Transfer state, serverbound ID 0x02.
type LoginPluginResponse struct {
	MessageID  int32
	Successful bool
	Data       []byte
}

func decodeLoginPluginResponse(body []byte) (any, error) {
	r := protocol.NewReader(body)
	var p LoginPluginResponse
	var err error
	if p.MessageID, err = r.ReadVarInt(); err != nil {
		return nil, err
	}
	if p.Successful, err = r.ReadBool(); err != nil {
		return nil, err
	}
	if p.Successful {
		p.Data = r.ReadRemaining()
	}
	return &p, nil
}

// LoginAcknowledged is Login/Transfer state, serverbound ID 0x03. Empty body.
type LoginAcknowledged struct{}

func decodeLoginAcknowledged([]byte) (any, error) { return &LoginAcknowledged{}, nil }

// ClientInformation is Config state, serverbound.
type ClientInformation struct {
	Locale              string
	ViewDistance        int8
	ChatMode            model.ChatMode
	ChatColors          bool
	SkinParts           uint8
	MainHand            model.Hand
	TextFiltering       bool
	AllowServerListings bool
}

func decodeClientInformation(body []byte) (any, error) {
	r := protocol.NewReader(body)
	var p ClientInformation
	var err error
	if p.Locale, err = r.ReadString(); err != nil {
		return nil, err
	}
	vd, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	p.ViewDistance = int8(vd)
	chatMode, err := r.ReadVarInt()
	if err != nil {
		return nil, err
	}
	p.ChatMode = model.ChatMode(chatMode)
	if p.ChatColors, err = r.ReadBool(); err != nil {
		return nil, err
	}
	skinParts, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	p.SkinParts = skinParts
	mainHand, err := r.ReadVarInt()
	if err != nil {
		return nil, err
	}
	p.MainHand = model.Hand(mainHand)
	if p.TextFiltering, err = r.ReadBool(); err != nil {
		return nil, err
	}
	if p.AllowServerListings, err = r.ReadBool(); err != nil {
		return nil, err
	}
	return &p, nil
}

// PluginMessage is Config state, serverbound: a channel identifier and its
// raw payload. The connection records "minecraft:brand" and ignores every
// other channel.
type PluginMessage struct {
	Channel string
	Data    []byte
}

func decodePluginMessage(body []byte) (any, error) {
	r := protocol.NewReader(body)
	var p PluginMessage
	var err error
	if p.Channel, err = r.ReadString(); err != nil {
		return nil, err
	}
	p.Data = r.ReadRemaining()
	return &p, nil
}

// KnownPacks is Config state, serverbound: the set of datapacks the client
// claims to already have.
type KnownPacks struct {
	Packs []KnownPack
}

type KnownPack struct {
	Namespace string
	ID        string
	Version   string
}

func decodeKnownPacks(body []byte) (any, error) {
	r := protocol.NewReader(body)
	count, err := r.ReadVarInt()
	if err != nil {
		return nil, err
	}
	p := KnownPacks{Packs: make([]KnownPack, 0, count)}
	for i := int32(0); i < count; i++ {
		var pack KnownPack
		if pack.Namespace, err = r.ReadString(); err != nil {
			return nil, err
		}
		if pack.ID, err = r.ReadString(); err != nil {
			return nil, err
		}
		if pack.Version, err = r.ReadString(); err != nil {
			return nil, err
		}
		p.Packs = append(p.Packs, pack)
	}
	return &p, nil
}

// AcknowledgeFinishConfig is Config state, serverbound. Empty body; its
// receipt transitions the connection to Play (spec §4.B).
type AcknowledgeFinishConfig struct{}

func decodeAcknowledgeFinishConfig([]byte) (any, error) { return &AcknowledgeFinishConfig{}, nil }

// NextState translates the handshake's raw next_state field into a
// ConnectionState, per spec §4.B's 1=Status/2=Login/3=Transfer enum. ok is
// false for any other value.
func (h *Handshake) NextState() (state constants.ConnectionState, ok bool) {
	switch h.NextStateRaw {
	case 1:
		return constants.StateStatus, true
	case 2:
		return constants.StateLogin, true
	case 3:
		return constants.StateTransfer, true
	default:
		return constants.StateHandShake, false
	}
}
