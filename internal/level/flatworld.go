package level

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// FlatWorldProvider is a deterministic stand-in level subsystem: every chunk
// is the same flat superflat column, generated on demand rather than read
// from storage. It exists so internal/world's chunk-streaming path (spec
// §4.E) has a real collaborator to drive against.
type FlatWorldProvider struct {
	// Workers bounds how many chunk "fetches" run concurrently per Stream
	// call. Zero means errgroup.Group's default (unbounded).
	Workers int
}

// Stream implements Provider. Each coordinate is generated independently on
// the worker pool; the channel has capacity viewDistance, per spec §4.E/§9's
// channel-capacity-equals-view-distance backpressure rule, so a slow
// consumer stalls the producer pool once that many results are buffered
// rather than letting every coordinate's result queue up unbounded.
func (p *FlatWorldProvider) Stream(ctx context.Context, coords []ChunkCoord, viewDistance int32) <-chan ChunkResult {
	out := make(chan ChunkResult, viewDistance)

	go func() {
		defer close(out)

		g, gctx := errgroup.WithContext(ctx)
		if p.Workers > 0 {
			g.SetLimit(p.Workers)
		}

		for _, c := range coords {
			c := c
			g.Go(func() error {
				data, err := generateFlatChunk(c)
				select {
				case out <- ChunkResult{Coord: c, Data: data, Err: err}:
				case <-gctx.Done():
				}
				return nil
			})
		}

		_ = g.Wait()
	}()

	return out
}

// generateFlatChunk produces a minimal, deterministic chunk payload: a
// handful of stone/dirt/grass layers. The connection core only needs
// something it can frame as a ChunkData packet; full chunk-section encoding
// (palettes, biomes, heightmaps) is out of scope per spec §1.
func generateFlatChunk(c ChunkCoord) ([]byte, error) {
	const (
		stoneLayers = 60
		dirtLayers  = 3
		grassLayers = 1
	)
	layers := stoneLayers + dirtLayers + grassLayers
	data := make([]byte, layers)
	for i := 0; i < stoneLayers; i++ {
		data[i] = 1 // stone
	}
	for i := stoneLayers; i < stoneLayers+dirtLayers; i++ {
		data[i] = 2 // dirt
	}
	data[layers-1] = 3 // grass block
	return data, nil
}
