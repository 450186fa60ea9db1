// Package connection implements the per-connection state machine and I/O
// driver described in spec §4.C: a Connection owns one TCP socket, a frame
// codec, and an inbound packet queue, and drives itself through the
// HandShake -> Status|Login|Transfer -> Config -> Play phases.
package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"

	"github.com/udisondev/mcgo/internal/auth"
	"github.com/udisondev/mcgo/internal/constants"
	"github.com/udisondev/mcgo/internal/crypto"
	"github.com/udisondev/mcgo/internal/model"
	"github.com/udisondev/mcgo/internal/protocol"
	"github.com/udisondev/mcgo/internal/registry"
)

const readBufferSize = 4096

// ErrSharedSecretWrongLength mirrors spec §4.C's enable_encryption contract:
// the decrypted shared secret must be exactly 16 bytes.
var ErrSharedSecretWrongLength = errors.New("shared secret has the wrong length")

// Collaborators bundles the server-wide dependencies every Connection shares.
// It is constructed once by cmd/server and handed to internal/gameserver,
// which passes it to every new Connection.
type Collaborators struct {
	Table      *registry.Table
	Auth       auth.Authenticator
	RSAKeyPair *crypto.KeyPair
	ServerID   string // login protocol's "server ID" string (vanilla sends "")

	CompressionThreshold int
	CompressionLevel     int

	// OnPromote is invoked exactly once, when a Connection's Config phase
	// finishes (AcknowledgeFinishConfig). It runs the promotion spec §4.D
	// describes: move out of the pending registry, construct a Player, join
	// the world. It must not block on anything that waits on this
	// Connection's own queue.
	OnPromote func(ctx context.Context, conn *Connection) error
}

// Connection is a single client's state machine and I/O driver (spec §3,
// §4.C). A Connection is created in state HandShake and ends either
// promoted into a Player or Closed.
type Connection struct {
	Token uint64

	conn     net.Conn
	peerAddr string

	collab Collaborators

	state             atomic.Int32
	protocolVersion   atomic.Int32
	encryptionEnabled atomic.Bool
	closed            atomic.Bool
	promote           atomic.Bool

	// decoder is owned exclusively by the goroutine running Poll.
	decoder *protocol.Decoder

	writeMu sync.Mutex
	encoder *protocol.Encoder

	queueMu sync.Mutex
	queue   []*protocol.RawPacket

	fieldsMu     sync.Mutex
	profile      *model.GameProfile
	playerConfig *model.PlayerConfig
	brand        string
	verifyToken  []byte
}

// New constructs a Connection in state HandShake, encryption and
// compression off, closed false (spec §4.C).
func New(token uint64, conn net.Conn, collab Collaborators) *Connection {
	c := &Connection{
		Token:   token,
		conn:    conn,
		collab:  collab,
		decoder: protocol.NewDecoder(),
		encoder: protocol.NewEncoder(),
	}
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		if err := tcpConn.SetNoDelay(true); err != nil {
			slog.Warn("set TCP_NODELAY failed", "error", err)
		}
	}
	c.peerAddr = conn.RemoteAddr().String()
	c.state.Store(int32(constants.StateHandShake))
	return c
}

// State returns the connection's current phase.
func (c *Connection) State() constants.ConnectionState {
	return constants.ConnectionState(c.state.Load())
}

func (c *Connection) setState(s constants.ConnectionState) {
	c.state.Store(int32(s))
}

// PeerAddr returns the remote address captured at construction.
func (c *Connection) PeerAddr() string { return c.peerAddr }

// Closed reports whether the connection's closed flag has been set. The
// flag is monotonic: once true, always true (spec §3 invariant i).
func (c *Connection) Closed() bool { return c.closed.Load() }

// ShouldPromote reports whether the connection has finished Config and is
// waiting to be transferred into the world (spec §4.D).
func (c *Connection) ShouldPromote() bool { return c.promote.Load() }

// Profile returns the GameProfile installed during login, if any.
func (c *Connection) Profile() *model.GameProfile {
	c.fieldsMu.Lock()
	defer c.fieldsMu.Unlock()
	return c.profile
}

// PlayerConfig returns the configuration installed during the Config phase,
// defaulting to model.DefaultPlayerConfig if ClientInformation was never
// received.
func (c *Connection) PlayerConfig() model.PlayerConfig {
	c.fieldsMu.Lock()
	defer c.fieldsMu.Unlock()
	if c.playerConfig == nil {
		return model.DefaultPlayerConfig()
	}
	return *c.playerConfig
}

// EnableEncryption installs sharedSecret into both codec halves. It is
// one-shot and monotonic (spec §3 invariant ii): calling it twice is a
// programming error, not a protocol condition, so it panics rather than
// returning a second error type.
func (c *Connection) EnableEncryption(sharedSecret []byte) error {
	if len(sharedSecret) != constants.AESKeySize {
		return fmt.Errorf("%w: got %d bytes", ErrSharedSecretWrongLength, len(sharedSecret))
	}
	if c.encryptionEnabled.Load() {
		panic("connection: EnableEncryption called twice")
	}

	session, err := crypto.NewSession(sharedSecret)
	if err != nil {
		return err
	}

	c.decoder.EnableEncryption(session.Decrypt)
	c.writeMu.Lock()
	c.encoder.EnableEncryption(session.Encrypt)
	c.writeMu.Unlock()

	c.encryptionEnabled.Store(true)
	return nil
}

// SetCompression wires threshold and level through to both codec halves
// (spec §3 invariant iii: the codec must tolerate being reconfigured more
// than once).
func (c *Connection) SetCompression(threshold, level int) {
	c.decoder.SetCompression(threshold)
	c.writeMu.Lock()
	c.encoder.SetCompression(threshold)
	c.encoder.SetCompressionLevel(level)
	c.writeMu.Unlock()
}

// TrySendPacket encodes and writes packet, surfacing any error. Concurrent
// calls are serialized by writeMu so bytes of different packets are never
// interleaved (spec §5 ordering guarantee iii).
func (c *Connection) TrySendPacket(packet *protocol.RawPacket) error {
	c.writeMu.Lock()
	buf, err := c.encoder.Append(nil, packet)
	if err == nil {
		_, err = c.conn.Write(buf)
	}
	c.writeMu.Unlock()

	if err != nil {
		return fmt.Errorf("sending packet 0x%02x: %w", packet.ID, err)
	}
	return nil
}

// SendPacket is the infallible shim spec §4.C describes: encode/write
// failures become a kick rather than a returned error.
func (c *Connection) SendPacket(packet *protocol.RawPacket) {
	if err := c.TrySendPacket(packet); err != nil {
		c.Kick(err.Error())
	}
}

// Enqueue appends a decoded RawPacket to the inbound FIFO queue.
func (c *Connection) Enqueue(packet *protocol.RawPacket) {
	c.queueMu.Lock()
	c.queue = append(c.queue, packet)
	c.queueMu.Unlock()
}

// ProcessQueue drains the inbound queue in FIFO order, dispatching each
// packet against the current state (spec §4.C). A handler error kicks the
// connection and stops draining.
func (c *Connection) ProcessQueue(ctx context.Context) {
	for {
		c.queueMu.Lock()
		if len(c.queue) == 0 {
			c.queueMu.Unlock()
			return
		}
		packet := c.queue[0]
		c.queue = c.queue[1:]
		c.queueMu.Unlock()

		if err := c.dispatch(ctx, packet); err != nil {
			c.Kick(err.Error())
			return
		}
		if c.Closed() {
			return
		}
	}
}

// Poll is the I/O loop (spec §4.C): read into a scratch buffer, feed the
// decoder, enqueue every complete frame, repeat until the socket closes or
// errors. It must run on a single goroutine per connection - the decoder is
// not safe for concurrent use.
func (c *Connection) Poll() {
	scratch := make([]byte, readBufferSize)
	for {
		if c.Closed() {
			return
		}

		n, err := c.conn.Read(scratch)
		if n > 0 {
			c.decoder.Queue(scratch[:n])
			for {
				packet, ok, decErr := c.decoder.Decode()
				if decErr != nil {
					c.Kick(decErr.Error())
					return
				}
				if !ok {
					break
				}
				c.Enqueue(packet)
			}
		}

		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			// Any other read error, including a graceful Read(0) EOF or the
			// socket being closed out from under us, ends the connection. The
			// core has no disconnect packet to send here - the peer is already
			// gone or the transport itself failed (spec §4.C).
			c.Close()
			return
		}
	}
}

// Kick dispatches a disconnect packet matching the current state, then
// closes the connection (spec §4.C). States with no disconnect packet log a
// warning instead.
func (c *Connection) Kick(reason string) {
	switch c.State() {
	case constants.StateLogin, constants.StateTransfer:
		_ = c.TrySendPacket(registry.NewLoginDisconnect(reason))
	case constants.StateConfig:
		_ = c.TrySendPacket(registry.NewConfigDisconnect(reason))
	case constants.StatePlay:
		_ = c.TrySendPacket(registry.NewPlayDisconnect(reason))
	default:
		slog.Warn("kicking connection with no disconnect packet for its state", "token", c.Token, "state", c.State(), "reason", reason)
	}
	c.Close()
}

// Close sets the closed flag. Monotonic: subsequent calls are no-ops.
func (c *Connection) Close() {
	if c.closed.CompareAndSwap(false, true) {
		c.setState(constants.StateClosed)
		_ = c.conn.Close()
	}
}
