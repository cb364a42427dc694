// Package station implements StationLink, the local operator TCP channel
// (spec §4.G): a single-client-at-a-time accept loop, a mutex-protected
// "latest command" mailbox with a new-data flag, and best-effort telemetry
// broadcast. The accept/evict/mailbox shape follows
// modules/framesupplier's WorkerSlot pattern translated from a
// publish/subscribe slot into a single persistent TCP peer.
package station

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/aryorithm/aegis-sky/internal/ipc"
)

// Link is the StationLink TCP server. It accepts at most one client at a
// time; a new accept evicts the prior client's connection.
type Link struct {
	listener net.Listener
	logger   *slog.Logger

	mu       sync.Mutex
	conn     net.Conn
	latest   ipc.CommandPacket
	latestAt time.Time
	hasNew   bool
}

// New opens the listening socket on the given port. Binding failure is
// returned to the caller; StationLink has no retry-with-backoff semantics
// of its own (unlike Bridge/CloudLink) because its client is optional.
func New(port int, logger *slog.Logger) (*Link, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Link{listener: ln, logger: logger}, nil
}

// Serve runs the accept loop until ctx is cancelled, handling one client
// connection at a time.
func (l *Link) Serve(ctx context.Context) {
	go func() {
		<-ctx.Done()
		l.listener.Close()
	}()

	for {
		conn, err := l.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			l.logger.Warn("station accept failed", "error", err)
			continue
		}

		l.mu.Lock()
		if l.conn != nil {
			l.conn.Close()
		}
		l.conn = conn
		l.mu.Unlock()

		go l.readClient(ctx, conn)
	}
}

// readClient reads fixed-size CommandPacket frames from one client until
// the read fails, then closes the socket and returns control to Serve's
// accept loop (spec §4.G: "a failed write closes the socket and returns
// to accept" — reads follow the same rule here).
func (l *Link) readClient(ctx context.Context, conn net.Conn) {
	var buf [ipc.CommandPacketSize]byte
	for {
		if _, err := readFull(conn, buf[:]); err != nil {
			conn.Close()
			l.mu.Lock()
			if l.conn == conn {
				l.conn = nil
			}
			l.mu.Unlock()
			return
		}

		cmd := ipc.DecodeCommandPacket(buf)
		l.mu.Lock()
		l.latest = cmd
		l.latestAt = time.Now()
		l.hasNew = true
		l.mu.Unlock()
	}
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// LatestCommand consumes and clears the new-data flag, returning the most
// recently received CommandPacket and whether it was new since the last
// call (spec §4.G's "get_latest_command consumes and clears the flag").
func (l *Link) LatestCommand() (ipc.CommandPacket, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	wasNew := l.hasNew
	l.hasNew = false
	return l.latest, wasNew
}

// LatestCommandAt returns the wall-clock time the last CommandPacket was
// received, the zero time if none has ever arrived. GuidanceLoop uses this
// to decide whether an operator pan/tilt command is still within the
// operator_hold window (spec §4.F step 4).
func (l *Link) LatestCommandAt() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.latestAt
}

// Broadcast writes a TelemetryPacket to the current client, if any,
// best-effort. A failed write closes the socket; the accept loop notices
// on its next iteration and resumes listening for a replacement client.
func (l *Link) Broadcast(tp ipc.TelemetryPacket) error {
	l.mu.Lock()
	conn := l.conn
	l.mu.Unlock()

	if conn == nil {
		return nil
	}

	buf := ipc.EncodeTelemetryPacket(tp)
	if _, err := conn.Write(buf[:]); err != nil {
		conn.Close()
		l.mu.Lock()
		if l.conn == conn {
			l.conn = nil
		}
		l.mu.Unlock()
		return err
	}
	return nil
}

// Close shuts down the listener and any connected client.
func (l *Link) Close() error {
	l.mu.Lock()
	if l.conn != nil {
		l.conn.Close()
		l.conn = nil
	}
	l.mu.Unlock()
	return l.listener.Close()
}
