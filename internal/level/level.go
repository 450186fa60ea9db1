// Package level is the external level collaborator from spec §6: given a
// list of chunk coordinates it pushes decoded chunk results into a channel,
// then closes it. Terrain generation and storage are out of scope; this
// package only defines the interface and a deterministic flat-world stand-in
// the server can run against.
package level

import (
	"context"
)

// ChunkCoord identifies one chunk column.
type ChunkCoord struct {
	X, Z int32
}

// ChunkResult is one chunk delivered over the channel Provider.Stream
// returns. Err is set, and Data nil, if that single chunk failed to
// produce - the consumer skips it and continues (spec §4.E).
type ChunkResult struct {
	Coord ChunkCoord
	Data  []byte
	Err   error
}

// Provider is the level collaborator. Stream dispatches chunk fetches for
// coords on a blocking worker pool and returns a channel bounded to
// viewDistance, not len(coords) (spec §4.E: "create a bounded channel of
// capacity d"; §9 restates this as the sole backpressure mechanism) - a slow
// consumer throttles the producer pool once viewDistance results are
// buffered. The channel is closed once every coordinate has produced a
// result or ctx is done.
type Provider interface {
	Stream(ctx context.Context, coords []ChunkCoord, viewDistance int32) <-chan ChunkResult
}
