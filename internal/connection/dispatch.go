package connection

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/udisondev/mcgo/internal/constants"
	"github.com/udisondev/mcgo/internal/model"
	"github.com/udisondev/mcgo/internal/protocol"
	"github.com/udisondev/mcgo/internal/registry"
)

// dispatch resolves packet against the registry table for the connection's
// current state and direction, then routes it to the handler for its
// concrete type. An ID with no registry entry is logged and dropped, not
// fatal (spec §4.B edge case).
func (c *Connection) dispatch(ctx context.Context, packet *protocol.RawPacket) error {
	state := c.State()
	decode, ok := c.collab.Table.Lookup(state, constants.DirectionServerbound, packet.ID)
	if !ok {
		slog.Warn("dropping packet with no registered decoder", "token", c.Token, "state", state, "id", packet.ID)
		return nil
	}

	decoded, err := decode(packet.Payload)
	if err != nil {
		return fmt.Errorf("decoding packet 0x%02x in state %s: %w", packet.ID, state, err)
	}

	switch p := decoded.(type) {
	case *registry.Handshake:
		return c.handleHandshake(p)
	case *registry.StatusRequest:
		return c.handleStatusRequest()
	case *registry.PingRequest:
		return c.handlePingRequest(p)
	case *registry.LoginStart:
		return c.handleLoginStart(p)
	case *registry.EncryptionResponse:
		return c.handleEncryptionResponse(ctx, p)
	case *registry.LoginPluginResponse:
		return c.handleLoginPluginResponse(p)
	case *registry.LoginAcknowledged:
		c.setState(constants.StateConfig)
		return nil
	case *registry.ClientInformation:
		return c.handleClientInformation(p)
	case *registry.PluginMessage:
		return c.handlePluginMessage(p)
	case *registry.KnownPacks:
		// The core does not maintain a datapack catalog; it ignores the
		// client's list and immediately sends FinishConfiguration, which is
		// sufficient to keep the connection moving.
		return c.TrySendPacket(registry.NewFinishConfiguration())
	case *registry.AcknowledgeFinishConfig:
		return c.handleAcknowledgeFinishConfig(ctx)
	default:
		slog.Warn("registry produced an unhandled packet type", "token", c.Token, "type", fmt.Sprintf("%T", decoded))
		return nil
	}
}

func (c *Connection) handleHandshake(p *registry.Handshake) error {
	state, ok := p.NextState()
	if !ok {
		return fmt.Errorf("handshake requested unknown next_state %d", p.NextStateRaw)
	}
	c.protocolVersion.Store(p.ProtocolVersion)
	c.setState(state)
	return nil
}

func (c *Connection) handleStatusRequest() error {
	motd, err := json.Marshal(map[string]any{
		"version": map[string]any{"name": "mcgo", "protocol": c.protocolVersion.Load()},
		"players": map[string]any{"max": 20, "online": 0},
		"description": map[string]any{"text": "A Minecraft Server"},
	})
	if err != nil {
		return fmt.Errorf("marshaling status response: %w", err)
	}
	return c.TrySendPacket(registry.NewStatusResponse(string(motd)))
}

func (c *Connection) handlePingRequest(p *registry.PingRequest) error {
	if err := c.TrySendPacket(registry.NewPongResponse(p.Payload)); err != nil {
		return err
	}
	c.Close()
	return nil
}

func (c *Connection) handleLoginStart(p *registry.LoginStart) error {
	c.fieldsMu.Lock()
	profile := model.GameProfile{UUID: p.UUID, Name: p.Name}
	c.profile = &profile
	token := make([]byte, constants.VerifyTokenSize)
	if _, err := rand.Read(token); err != nil {
		c.fieldsMu.Unlock()
		return fmt.Errorf("generating verify token: %w", err)
	}
	c.verifyToken = token
	c.fieldsMu.Unlock()

	return c.TrySendPacket(registry.NewEncryptionRequest(c.collab.ServerID, c.collab.RSAKeyPair.PublicKeyDER, token))
}

func (c *Connection) handleEncryptionResponse(ctx context.Context, p *registry.EncryptionResponse) error {
	sharedSecret, err := c.collab.RSAKeyPair.DecryptPKCS1v15(p.EncryptedSharedSecret)
	if err != nil {
		return fmt.Errorf("decrypting shared secret: %w", err)
	}
	verifyToken, err := c.collab.RSAKeyPair.DecryptPKCS1v15(p.EncryptedVerifyToken)
	if err != nil {
		return fmt.Errorf("decrypting verify token: %w", err)
	}

	c.fieldsMu.Lock()
	expected := c.verifyToken
	c.fieldsMu.Unlock()
	if string(verifyToken) != string(expected) {
		return fmt.Errorf("verify token mismatch")
	}

	if err := c.EnableEncryption(sharedSecret); err != nil {
		return err
	}

	c.fieldsMu.Lock()
	name := ""
	if c.profile != nil {
		name = c.profile.Name
	}
	c.fieldsMu.Unlock()

	profile, err := c.collab.Auth.Authenticate(ctx, name, sharedSecret)
	if err != nil {
		return fmt.Errorf("auth failed: %w", err)
	}

	c.fieldsMu.Lock()
	c.profile = &profile
	c.fieldsMu.Unlock()

	if c.collab.CompressionThreshold >= 0 {
		if err := c.TrySendPacket(registry.NewSetCompression(int32(c.collab.CompressionThreshold))); err != nil {
			return err
		}
		c.SetCompression(c.collab.CompressionThreshold, c.collab.CompressionLevel)
	}

	return c.TrySendPacket(registry.NewLoginSuccess(profile))
}

func (c *Connection) handleLoginPluginResponse(_ *registry.LoginPluginResponse) error {
	// No plugin query is ever outstanding in the connection core (spec
	// §4.B): nothing to correlate this response against.
	return nil
}

func (c *Connection) handleClientInformation(p *registry.ClientInformation) error {
	cfg := model.PlayerConfig{
		Locale:        p.Locale,
		ViewDistance:  p.ViewDistance,
		ChatMode:      p.ChatMode,
		ChatColors:    p.ChatColors,
		SkinParts:     p.SkinParts,
		MainHand:      p.MainHand,
		TextFiltering: p.TextFiltering,
		ServerListing: p.AllowServerListings,
	}
	c.fieldsMu.Lock()
	c.playerConfig = &cfg
	c.fieldsMu.Unlock()
	return nil
}

func (c *Connection) handlePluginMessage(p *registry.PluginMessage) error {
	if p.Channel == "minecraft:brand" {
		c.fieldsMu.Lock()
		c.brand = string(p.Data)
		c.fieldsMu.Unlock()
	}
	return nil
}

func (c *Connection) handleAcknowledgeFinishConfig(ctx context.Context) error {
	c.setState(constants.StatePlay)
	c.promote.Store(true)
	if c.collab.OnPromote == nil {
		return nil
	}
	return c.collab.OnPromote(ctx, c)
}
