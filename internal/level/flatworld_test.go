package level

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatWorldProvider_StreamProducesAllChunks(t *testing.T) {
	p := &FlatWorldProvider{Workers: 4}
	coords := []ChunkCoord{{0, 0}, {1, 0}, {0, 1}, {-1, -1}}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got := make(map[ChunkCoord]bool)
	for result := range p.Stream(ctx, coords, 2) {
		assert.NoError(t, result.Err, "chunk %+v returned error", result.Coord)
		assert.NotEmpty(t, result.Data, "chunk %+v returned empty data", result.Coord)
		got[result.Coord] = true
	}

	assert.Len(t, got, len(coords))
}

func TestFlatWorldProvider_StreamClosesChannel(t *testing.T) {
	p := &FlatWorldProvider{}
	ch := p.Stream(context.Background(), []ChunkCoord{{0, 0}}, 2)

	select {
	case _, ok := <-ch:
		require.True(t, ok, "channel closed before delivering its one chunk")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for chunk")
	}

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel produced a second value for a single-coordinate request")
	case <-time.After(time.Second):
		t.Fatal("channel was never closed")
	}
}

func TestFlatWorldProvider_EmptyCoordsClosesImmediately(t *testing.T) {
	p := &FlatWorldProvider{}
	ch := p.Stream(context.Background(), nil, 2)

	select {
	case _, ok := <-ch:
		assert.False(t, ok, "expected closed empty channel for no coordinates")
	case <-time.After(time.Second):
		t.Fatal("channel was never closed")
	}
}

func TestFlatWorldProvider_StreamChannelCapacityMatchesViewDistance(t *testing.T) {
	p := &FlatWorldProvider{}
	const viewDistance = 5

	ch := p.Stream(context.Background(), nil, viewDistance)

	assert.Equal(t, viewDistance, cap(ch), "channel capacity must be bounded to the view distance, not len(coords)")
}
