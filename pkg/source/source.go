// Package source feeds hard-decided bits (one per byte, value 0 or 1) into a
// tetrapol.PhysicalChannel from a file, a UDP socket, or stdin. Every Source
// shares the same Pump loop: read a chunk, Recv it, Process, repeat. Network
// reads poll a deadline against ctx.Done() so the pump can be cancelled
// without blocking forever on I/O.
package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/dbehnke/tetrapol-phys/pkg/logger"
	"github.com/dbehnke/tetrapol-phys/pkg/tetrapol"
)

// Channel is the subset of tetrapol.PhysicalChannel a Source drives.
type Channel interface {
	Recv(data []byte) int
	Process() int
}

// readChunk is the largest number of bits read and offered to Recv at once.
// After Process a PhysicalChannel holds at most FrameLen+FrameHdrLen
// buffered bits (except right after a sync loss), so a chunk of this size
// fits the bit buffer's free space.
const readChunk = tetrapol.BitBufferCapacity - (tetrapol.FrameLen + tetrapol.FrameHdrLen)

// pump reads from next (which must return io.EOF when exhausted, or a
// deadline-timeout error that satisfies net.Error.Timeout() to allow
// cooperative cancellation) and feeds ch until ctx is cancelled or next
// returns a non-timeout, non-EOF error.
func pump(ctx context.Context, log *logger.Logger, ch Channel, next func([]byte) (int, error)) error {
	buf := make([]byte, readChunk)
	truncated := false

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := next(buf)
		if n > 0 {
			accepted := ch.Recv(buf[:n])
			if accepted < n {
				if !truncated {
					log.Warn("bit source outrunning buffer, dropping bits",
						logger.Int("offered", n), logger.Int("accepted", accepted))
					truncated = true
				}
			} else {
				truncated = false
			}
			ch.Process()
		}

		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			return fmt.Errorf("source: read error: %w", err)
		}
	}
}

// FileSource feeds bits read from a file, useful for replaying a capture.
type FileSource struct {
	path string
	log  *logger.Logger
}

// NewFileSource constructs a FileSource reading from path.
func NewFileSource(path string, log *logger.Logger) *FileSource {
	return &FileSource{path: path, log: log.WithComponent("source.file")}
}

// Pump opens the file and feeds ch until EOF or ctx is cancelled.
func (s *FileSource) Pump(ctx context.Context, ch Channel) error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("source: open %s: %w", s.path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	return pump(ctx, s.log, ch, r.Read)
}

// StdinSource feeds bits read from the process's standard input.
type StdinSource struct {
	log *logger.Logger
}

// NewStdinSource constructs a StdinSource.
func NewStdinSource(log *logger.Logger) *StdinSource {
	return &StdinSource{log: log.WithComponent("source.stdin")}
}

// Pump reads from stdin and feeds ch until EOF or ctx is cancelled.
func (s *StdinSource) Pump(ctx context.Context, ch Channel) error {
	r := bufio.NewReader(os.Stdin)
	return pump(ctx, s.log, ch, r.Read)
}

// UDPSource feeds bits received as UDP datagrams, one payload per Recv call.
type UDPSource struct {
	addr string
	log  *logger.Logger
}

// NewUDPSource constructs a UDPSource listening on addr (host:port).
func NewUDPSource(addr string, log *logger.Logger) *UDPSource {
	return &UDPSource{addr: addr, log: log.WithComponent("source.udp")}
}

// Pump listens on addr and feeds ch with each datagram's payload until ctx
// is cancelled.
func (s *UDPSource) Pump(ctx context.Context, ch Channel) error {
	laddr, err := net.ResolveUDPAddr("udp", s.addr)
	if err != nil {
		return fmt.Errorf("source: resolve %s: %w", s.addr, err)
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return fmt.Errorf("source: listen %s: %w", s.addr, err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	return pump(ctx, s.log, ch, func(buf []byte) (int, error) {
		conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
		n, _, err := conn.ReadFromUDP(buf)
		return n, err
	})
}

var _ Channel = (*tetrapol.PhysicalChannel)(nil)
