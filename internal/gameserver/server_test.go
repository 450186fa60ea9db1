package gameserver

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/udisondev/mcgo/internal/connection"
	"github.com/udisondev/mcgo/internal/crypto"
	"github.com/udisondev/mcgo/internal/level"
	"github.com/udisondev/mcgo/internal/model"
	"github.com/udisondev/mcgo/internal/registry"
	"github.com/udisondev/mcgo/internal/world"
)

type stubAuthenticator struct{}

func (stubAuthenticator) Authenticate(_ context.Context, name string, _ []byte) (model.GameProfile, error) {
	return model.GameProfile{UUID: uuid.New(), Name: name}, nil
}

func testCollaborators(t *testing.T) connection.Collaborators {
	t.Helper()
	kp, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	return connection.Collaborators{
		Table:                registry.Default(),
		Auth:                 stubAuthenticator{},
		RSAKeyPair:           kp,
		CompressionThreshold: -1,
		CompressionLevel:     -1,
	}
}

func testWorld() *world.World {
	return world.New(world.Config{
		Hardcore:           false,
		MaxPlayers:         20,
		ViewDistance:       2,
		SimulationDistance: 2,
		DefaultGameMode:    0,
		DimensionName:      "minecraft:overworld",
	}, &level.FlatWorldProvider{})
}

// waitFor polls check until it returns true or timeout elapses, matching
// the teacher's WaitForCleanup/WaitForTCPReady polling idiom.
func waitFor(t *testing.T, timeout time.Duration, check func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if check() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func TestServer_AcceptLoop_RegistersAndDropsPendingConnection(t *testing.T) {
	w := testWorld()
	srv := New("127.0.0.1:0", testCollaborators(t), w)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Serve(ctx, ln)
	}()

	clientConn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)

	waitFor(t, 2*time.Second, func() bool { return srv.PendingCount() == 1 })

	clientConn.Close()

	waitFor(t, 2*time.Second, func() bool { return srv.PendingCount() == 0 })

	cancel()
	<-done
}

func TestServer_Promote_RemovesFromPendingInsertsIntoWorld(t *testing.T) {
	w := testWorld()
	srv := New("127.0.0.1:0", testCollaborators(t), w)

	server, client := net.Pipe()
	defer client.Close()
	c := connection.New(1, server, srv.collab)

	srv.mu.Lock()
	srv.pending[c.Token] = c
	srv.mu.Unlock()

	go func() {
		buf := make([]byte, 4096)
		for {
			if _, err := client.Read(buf); err != nil {
				return
			}
		}
	}()

	err := srv.promote(context.Background(), c)
	require.NoError(t, err)

	assert.Equal(t, 0, srv.PendingCount())
	_, ok := w.PlayerByToken(c.Token)
	assert.True(t, ok, "token not present in world after promote")
}

func TestServer_Promote_UnknownTokenErrors(t *testing.T) {
	w := testWorld()
	srv := New("127.0.0.1:0", testCollaborators(t), w)

	server, client := net.Pipe()
	defer client.Close()
	defer server.Close()
	c := connection.New(99, server, srv.collab)

	err := srv.promote(context.Background(), c)
	assert.Error(t, err, "promote() with no pending entry succeeded, want error")
}
