// Package world implements the World Broadcast Fabric (spec §4.E): the
// live-player registry and the broadcast primitives (all / except / one),
// plus the ordered spawn_player sequence and chunk-streaming pipeline.
package world

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/udisondev/mcgo/internal/connection"
	"github.com/udisondev/mcgo/internal/level"
	"github.com/udisondev/mcgo/internal/model"
	"github.com/udisondev/mcgo/internal/protocol"
	"github.com/udisondev/mcgo/internal/registry"
)

// Config carries the startup settings spec §6 lists as consumed-not-defined
// configuration relevant to the world.
type Config struct {
	Hardcore           bool
	MaxPlayers         int32
	ViewDistance       int32
	SimulationDistance int32
	DefaultGameMode    int8
	DimensionName      string
}

// Player wraps a promoted Connection with the gameplay identity the world
// assigns it (spec §3): a separate entity-id domain, game mode, and a
// mutable position, plus a back-reference to the world that holds it.
type Player struct {
	Token    uint64
	Conn     *connection.Connection
	EntityID int32
	GameMode int8

	posMu    sync.RWMutex
	position model.Position

	world *World
}

// Position returns the player's current position.
func (p *Player) Position() model.Position {
	p.posMu.RLock()
	defer p.posMu.RUnlock()
	return p.position
}

// SetPosition updates the player's position.
func (p *Player) SetPosition(pos model.Position) {
	p.posMu.Lock()
	p.position = pos
	p.posMu.Unlock()
}

// World holds the live-player registry (spec §3) and the level collaborator
// chunk streaming is delegated to.
type World struct {
	cfg      Config
	level    level.Provider
	entityID atomic.Int32

	mu      sync.RWMutex
	players map[uint64]*Player
}

// New constructs an empty World.
func New(cfg Config, levelProvider level.Provider) *World {
	return &World{
		cfg:     cfg,
		level:   levelProvider,
		players: make(map[uint64]*Player),
	}
}

// AddPlayer constructs a Player for conn and inserts it into the live
// registry. Per spec §4.D this is step 2 of promotion: the caller must
// already have removed conn's token from the pending registry before
// calling this, and must call SpawnPlayer afterward.
func (w *World) AddPlayer(conn *connection.Connection) *Player {
	player := &Player{
		Token:    conn.Token,
		Conn:     conn,
		EntityID: w.entityID.Add(1),
		GameMode: w.cfg.DefaultGameMode,
		position: model.NewPosition(0, 64, 0, 0, 0),
		world:    w,
	}

	w.mu.Lock()
	w.players[conn.Token] = player
	w.mu.Unlock()

	return player
}

// RemovePlayer removes token from the live registry and broadcasts its
// removal to every remaining player. It is a no-op if token is not present.
func (w *World) RemovePlayer(token uint64) {
	w.mu.Lock()
	player, ok := w.players[token]
	if ok {
		delete(w.players, token)
	}
	w.mu.Unlock()
	if !ok {
		return
	}

	w.BroadcastAll(registry.NewRemoveEntities([]int32{player.EntityID}))
	if profile := player.Conn.Profile(); profile != nil {
		w.BroadcastAll(registry.NewRemovePlayerInfo([]uuid.UUID{profile.UUID}))
	}
}

// snapshot returns a copy of the live player list. The broadcast critical
// section collects targets under the lock and releases it before sending,
// per spec §5's "broadcast critical section" rule.
func (w *World) snapshot() []*Player {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]*Player, 0, len(w.players))
	for _, p := range w.players {
		out = append(out, p)
	}
	return out
}

// BroadcastAll sends packet to every live player.
func (w *World) BroadcastAll(packet *protocol.RawPacket) {
	for _, p := range w.snapshot() {
		p.Conn.SendPacket(packet)
	}
}

// BroadcastExcept sends packet to every live player whose token is not in
// excluded.
func (w *World) BroadcastExcept(excluded []uint64, packet *protocol.RawPacket) {
	skip := make(map[uint64]bool, len(excluded))
	for _, t := range excluded {
		skip[t] = true
	}
	for _, p := range w.snapshot() {
		if skip[p.Token] {
			continue
		}
		p.Conn.SendPacket(packet)
	}
}

// SendTo sends packet to the player identified by token. Silent if token is
// absent (spec §4.E).
func (w *World) SendTo(token uint64, packet *protocol.RawPacket) {
	w.mu.RLock()
	player, ok := w.players[token]
	w.mu.RUnlock()
	if !ok {
		return
	}
	player.Conn.SendPacket(packet)
}

// PlayerByToken returns the live player for token, if present.
func (w *World) PlayerByToken(token uint64) (*Player, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	p, ok := w.players[token]
	return p, ok
}

// chunksAround returns the view-distance-square of chunk coordinates
// centered on pos, matching the producer/channel-capacity rule of spec
// §4.E ("size it to the view distance").
func chunksAround(pos model.Position, viewDistance int32) []level.ChunkCoord {
	centerX := int32(pos.X) >> 4
	centerZ := int32(pos.Z) >> 4
	coords := make([]level.ChunkCoord, 0, (2*viewDistance+1)*(2*viewDistance+1))
	for dx := -viewDistance; dx <= viewDistance; dx++ {
		for dz := -viewDistance; dz <= viewDistance; dz++ {
			coords = append(coords, level.ChunkCoord{X: centerX + dx, Z: centerZ + dz})
		}
	}
	return coords
}

// streamChunks drives the chunk-streaming pipeline described in spec §4.E:
// fetch on the level collaborator's worker pool, and on the consumer side
// send a ChunkData packet for each successful result while the connection
// remains open. It corrects the snapshot-at-dispatch bug noted in spec §9 by
// re-checking conn.Closed() on every iteration rather than once up front.
// The context handed to the level collaborator is canceled when streaming
// stops, so producers blocked on the channel stop once the connection closes.
func (w *World) streamChunks(ctx context.Context, player *Player) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	coords := chunksAround(player.Position(), w.cfg.ViewDistance)
	results := w.level.Stream(ctx, coords, w.cfg.ViewDistance)

	for result := range results {
		if player.Conn.Closed() {
			return
		}
		if result.Err != nil {
			continue
		}
		player.Conn.SendPacket(registry.NewChunkData(result.Coord.X, result.Coord.Z, result.Data))
	}
}
