package world

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/udisondev/mcgo/internal/connection"
	"github.com/udisondev/mcgo/internal/level"
	"github.com/udisondev/mcgo/internal/model"
	"github.com/udisondev/mcgo/internal/protocol"
	"github.com/udisondev/mcgo/internal/registry"
)

func testConfig() Config {
	return Config{
		Hardcore:           false,
		MaxPlayers:         20,
		ViewDistance:       2,
		SimulationDistance: 2,
		DefaultGameMode:    0,
		DimensionName:      "minecraft:overworld",
	}
}

func newTestPlayer(t *testing.T, w *World, token uint64) (*Player, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	conn := connection.New(token, server, connection.Collaborators{Table: registry.Default(), CompressionThreshold: -1})
	player := w.AddPlayer(conn)
	return player, client
}

// drainAsync reads and discards bytes so SendPacket (which blocks on the
// net.Pipe until read) never stalls the broadcaster under test.
func drainAsync(t *testing.T, conn net.Conn) {
	t.Helper()
	go func() {
		buf := make([]byte, 4096)
		for {
			if _, err := conn.Read(buf); err != nil {
				return
			}
		}
	}()
}

func TestWorld_BroadcastAll(t *testing.T) {
	w := New(testConfig(), &level.FlatWorldProvider{})

	pA, cA := newTestPlayer(t, w, 1)
	pB, cB := newTestPlayer(t, w, 2)
	defer cA.Close()
	defer cB.Close()
	drainAsync(t, cA)
	drainAsync(t, cB)

	w.BroadcastAll(&protocol.RawPacket{ID: 0x01, Payload: []byte("hi")})

	_, ok := w.PlayerByToken(pA.Token)
	assert.True(t, ok, "player A missing from registry")
	_, ok = w.PlayerByToken(pB.Token)
	assert.True(t, ok, "player B missing from registry")
}

func TestWorld_BroadcastExcept(t *testing.T) {
	w := New(testConfig(), &level.FlatWorldProvider{})

	_, cA := newTestPlayer(t, w, 1)
	pB, cB := newTestPlayer(t, w, 2)
	_, cC := newTestPlayer(t, w, 3)
	defer cA.Close()
	defer cB.Close()
	defer cC.Close()

	gotA := make(chan []byte, 1)
	gotC := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 4096)
		n, _ := cA.Read(buf)
		gotA <- buf[:n]
	}()
	go func() {
		buf := make([]byte, 4096)
		n, _ := cC.Read(buf)
		gotC <- buf[:n]
	}()
	// B must receive nothing - its read should never unblock before the
	// pipes are closed.
	gotB := make(chan []byte, 1)
	go func() {
		buf := make([]byte, 4096)
		n, err := cB.Read(buf)
		if err == nil {
			gotB <- buf[:n]
		}
	}()

	w.BroadcastExcept([]uint64{pB.Token}, &protocol.RawPacket{ID: 0x02, Payload: nil})

	select {
	case <-gotA:
	case <-time.After(2 * time.Second):
		t.Fatal("player A (not excluded) never received the broadcast")
	}
	select {
	case <-gotC:
	case <-time.After(2 * time.Second):
		t.Fatal("player C (not excluded) never received the broadcast")
	}
	select {
	case <-gotB:
		t.Fatal("player B (excluded) received the broadcast")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWorld_RemovePlayer(t *testing.T) {
	w := New(testConfig(), &level.FlatWorldProvider{})
	p, c := newTestPlayer(t, w, 1)
	defer c.Close()
	drainAsync(t, c)

	w.RemovePlayer(p.Token)

	_, ok := w.PlayerByToken(p.Token)
	assert.False(t, ok, "player still present in registry after RemovePlayer")
	// Idempotent: removing again must not panic.
	w.RemovePlayer(p.Token)
}

func TestWorld_SendTo_UnknownTokenIsSilent(t *testing.T) {
	w := New(testConfig(), &level.FlatWorldProvider{})
	w.SendTo(999, &protocol.RawPacket{ID: 0x00})
}

func TestWorld_SpawnPlayer(t *testing.T) {
	w := New(testConfig(), &level.FlatWorldProvider{Workers: 2})
	p, c := newTestPlayer(t, w, 1)
	defer c.Close()
	drainAsync(t, c)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	w.SpawnPlayer(ctx, p.Conn.PlayerConfig(), p)
}

func TestChunksAround_CountMatchesViewDistance(t *testing.T) {
	coords := chunksAround(model.NewPosition(0, 64, 0, 0, 0), 2)
	want := (2*2 + 1) * (2*2 + 1)
	assert.Len(t, coords, want)
}
