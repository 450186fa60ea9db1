// Package gameserver implements the Connection Registry & Task Dispatch
// component (spec §4.D): the accept loop, the pending-clients registry, and
// token-based promotion into the World's live-player registry.
package gameserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/mcgo/internal/connection"
	"github.com/udisondev/mcgo/internal/world"
)

// pollInterval is how often a connection's task drains its inbound queue
// when nothing has recently woken it. The core has no signal channel
// between Poll's enqueue and ProcessQueue's drain (spec §5: synchronous
// registry mutations, no extra suspension points beyond those listed), so
// the process_queue loop is a short poll rather than a condition variable.
const pollInterval = 2 * time.Millisecond

// Server accepts client connections, holds the pending (pre-promotion)
// registry, and owns the World new connections are promoted into.
type Server struct {
	bindAddr string
	collab   connection.Collaborators
	world    *world.World

	nextToken atomic.Uint64

	mu      sync.Mutex
	pending map[uint64]*connection.Connection

	listener net.Listener
}

// New constructs a Server bound to addr. collab is cloned per connection
// with OnPromote wired to this Server's promote method; any OnPromote set
// by the caller is ignored.
func New(bindAddr string, collab connection.Collaborators, w *world.World) *Server {
	s := &Server{
		bindAddr: bindAddr,
		collab:   collab,
		world:    w,
		pending:  make(map[uint64]*connection.Connection),
	}
	s.collab.OnPromote = s.promote
	return s
}

// Addr returns the address the server is listening on, or nil before Run.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Run binds bindAddr and serves until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.bindAddr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.bindAddr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	return s.Serve(ctx, ln)
}

// Serve accepts connections from ln until ctx is canceled. Exposed
// separately from Run so tests can drive a pre-bound listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("game server started", "address", ln.Addr())
		s.acceptLoop(ctx, &wg, ln)
	}()

	wg.Wait()
	return nil
}

func (s *Server) acceptLoop(ctx context.Context, wg *sync.WaitGroup, ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			select {
			case <-ctx.Done():
				return
			default:
			}
			slog.Error("accept failed", "error", err)
			continue
		}

		token := s.nextToken.Add(1)
		c := connection.New(token, conn, s.collab)

		s.mu.Lock()
		s.pending[token] = c
		s.mu.Unlock()

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.driveConnection(ctx, c)
		}()
	}
}

// driveConnection runs a Connection's poll loop concurrently with its
// process_queue loop (spec §4.D) and removes it from the pending registry
// when it closes before ever being promoted.
func (s *Server) driveConnection(ctx context.Context, c *connection.Connection) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Poll()
	}()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			c.Close()
			<-done
			s.dropPending(c.Token)
			return
		case <-done:
			s.dropPending(c.Token)
			return
		case <-ticker.C:
			c.ProcessQueue(ctx)
			if c.Closed() {
				<-done
				s.dropPending(c.Token)
				return
			}
		}
	}
}

func (s *Server) dropPending(token uint64) {
	s.mu.Lock()
	delete(s.pending, token)
	s.mu.Unlock()
}

// promote runs the spec §4.D promotion sequence: remove from pending and
// insert into the live registry as a single critical section under s.mu, so
// no pending-registry reader can observe the token missing from both (spec
// §8 invariant 6). SpawnPlayer runs after s.mu is released; it takes the
// world's lock only briefly to snapshot the player list and sends with no
// registry lock held.
func (s *Server) promote(ctx context.Context, c *connection.Connection) error {
	s.mu.Lock()
	_, ok := s.pending[c.Token]
	var player *world.Player
	if ok {
		delete(s.pending, c.Token)
		player = s.world.AddPlayer(c)
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("promote: token %d not found in pending registry", c.Token)
	}

	s.world.SpawnPlayer(ctx, c.PlayerConfig(), player)
	return nil
}

// PendingCount returns the number of connections awaiting promotion.
// Exposed for tests and diagnostics.
func (s *Server) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
