package world

import (
	"context"

	"github.com/udisondev/mcgo/internal/model"
	"github.com/udisondev/mcgo/internal/registry"
)

const playerEntityType = 128 // matches no real vanilla registry; internal placeholder

// SpawnPlayer runs the ordered sequence spec §4.E specifies for introducing
// a newly-promoted player to the world and vice versa. It must be called
// once, immediately after AddPlayer, with the player already inserted into
// the live registry.
func (w *World) SpawnPlayer(ctx context.Context, cfg model.PlayerConfig, player *Player) {
	player.Conn.SendPacket(registry.NewPlayLogin(registry.PlayLoginParams{
		EntityID:           player.EntityID,
		Hardcore:           w.cfg.Hardcore,
		DimensionNames:     []string{w.cfg.DimensionName},
		MaxPlayers:         w.cfg.MaxPlayers,
		ViewDistance:       w.cfg.ViewDistance,
		SimulationDistance: w.cfg.SimulationDistance,
		GameMode:           player.GameMode,
		DimensionName:      w.cfg.DimensionName,
	}))

	player.Conn.SendPacket(registry.NewPlayerAbilities(0, 0.05, 0.1))

	spawnPos := player.Position()
	player.Conn.SendPacket(registry.NewSynchronizePlayerPosition(spawnPos, 0))

	profile := player.Conn.Profile()
	if profile == nil {
		profile = &model.GameProfile{Name: "unknown"}
	}

	entry := registry.PlayerInfoEntry{Profile: *profile, GameMode: player.GameMode, Listed: cfg.ServerListing}
	w.BroadcastAll(registry.NewPlayerInfoUpdateAdd([]registry.PlayerInfoEntry{entry}))

	existing := w.snapshot()
	existingEntries := make([]registry.PlayerInfoEntry, 0, len(existing))
	for _, other := range existing {
		if other.Token == player.Token {
			continue
		}
		if otherProfile := other.Conn.Profile(); otherProfile != nil {
			existingEntries = append(existingEntries, registry.PlayerInfoEntry{
				Profile:  *otherProfile,
				GameMode: other.GameMode,
				Listed:   true,
			})
		}
	}
	if len(existingEntries) > 0 {
		player.Conn.SendPacket(registry.NewPlayerInfoUpdateAdd(existingEntries))
	}

	w.BroadcastExcept([]uint64{player.Token}, registry.NewSpawnEntity(player.EntityID, profile.UUID, playerEntityType, spawnPos))
	for _, other := range existing {
		if other.Token == player.Token {
			continue
		}
		otherProfile := other.Conn.Profile()
		if otherProfile == nil {
			continue
		}
		player.Conn.SendPacket(registry.NewSpawnEntity(other.EntityID, otherProfile.UUID, playerEntityType, other.Position()))
	}

	w.BroadcastAll(registry.NewSetEntityMetadata(player.EntityID, cfg.SkinParts))

	player.Conn.SendPacket(registry.NewGameEvent(registry.GameEventStartWaitingChunks, 0))

	go w.streamChunks(ctx, player)
}
