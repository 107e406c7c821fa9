package source

import (
	"bytes"
	"context"
	"net"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dbehnke/tetrapol-phys/pkg/logger"
)

type fakeChannel struct {
	recvd     []byte
	recvLimit int
	processed int
}

func (f *fakeChannel) Recv(data []byte) int {
	n := len(data)
	if f.recvLimit > 0 && n > f.recvLimit {
		n = f.recvLimit
	}
	f.recvd = append(f.recvd, data[:n]...)
	return n
}

func (f *fakeChannel) Process() int {
	f.processed++
	return 0
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Output: &bytes.Buffer{}})
}

func TestFileSourceFeedsUntilEOF(t *testing.T) {
	tmp, err := os.CreateTemp(t.TempDir(), "bits")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	want := []byte{1, 0, 1, 1, 0, 0, 1, 0}
	if _, err := tmp.Write(want); err != nil {
		t.Fatalf("write: %v", err)
	}
	tmp.Close()

	ch := &fakeChannel{}
	s := NewFileSource(tmp.Name(), testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := s.Pump(ctx, ch); err != nil {
		t.Fatalf("Pump: %v", err)
	}
	if !bytes.Equal(ch.recvd, want) {
		t.Fatalf("recvd = %v, want %v", ch.recvd, want)
	}
	if ch.processed == 0 {
		t.Fatal("expected Process to be called at least once")
	}
}

func TestFileSourceMissingFile(t *testing.T) {
	s := NewFileSource("/nonexistent/path/does/not/exist", testLogger())
	err := s.Pump(context.Background(), &fakeChannel{})
	if err == nil {
		t.Fatal("expected an error opening a missing file")
	}
}

func TestFileSourceReportsShortRecvOnce(t *testing.T) {
	tmp, err := os.CreateTemp(t.TempDir(), "bits")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	if _, err := tmp.Write(bytes.Repeat([]byte{1}, readChunk+10)); err != nil {
		t.Fatalf("write: %v", err)
	}
	tmp.Close()

	ch := &fakeChannel{recvLimit: 5}
	var logBuf bytes.Buffer
	s := NewFileSource(tmp.Name(), logger.New(logger.Config{Level: "warn", Output: &logBuf}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Pump(ctx, ch); err != nil {
		t.Fatalf("Pump: %v", err)
	}
	if len(ch.recvd) == 0 {
		t.Fatal("expected some bits to be accepted despite truncation")
	}
	// Both reads are truncated; one streak, so one warning.
	if got := strings.Count(logBuf.String(), "bit source outrunning buffer"); got != 1 {
		t.Fatalf("truncation warnings = %d, want 1; log: %s", got, logBuf.String())
	}
}

func TestUDPSourceResolveFailure(t *testing.T) {
	s := NewUDPSource("not-an-address", testLogger())
	if err := s.Pump(context.Background(), &fakeChannel{}); err == nil {
		t.Fatal("expected resolve error for invalid udp address")
	}
}

func TestUDPSourceEndToEnd(t *testing.T) {
	addr, err := net.ResolveUDPAddr("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("ResolveUDPAddr: %v", err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		t.Fatalf("ListenUDP: %v", err)
	}
	boundAddr := conn.LocalAddr().String()
	conn.Close()

	ch := &fakeChannel{}
	s := NewUDPSource(boundAddr, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Pump(ctx, ch) }()

	// Give the listener a moment to bind before sending.
	time.Sleep(50 * time.Millisecond)

	sender, err := net.Dial("udp", boundAddr)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	payload := []byte{1, 1, 0, 0}
	if _, err := sender.Write(payload); err != nil {
		t.Fatalf("Write: %v", err)
	}
	sender.Close()

	deadline := time.After(2 * time.Second)
loop:
	for {
		if bytes.Contains(ch.recvd, payload) {
			break loop
		}
		select {
		case <-deadline:
			cancel()
			<-done
			t.Fatal("did not observe sent payload before deadline")
		case <-time.After(20 * time.Millisecond):
		}
	}

	cancel()
	<-done
}

func TestUDPSourceStopsOnCancel(t *testing.T) {
	addr, err := net.ResolveUDPAddr("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("ResolveUDPAddr: %v", err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		t.Fatalf("ListenUDP: %v", err)
	}
	boundAddr := conn.LocalAddr().String()
	conn.Close()

	s := NewUDPSource(boundAddr, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Pump(ctx, &fakeChannel{}) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected an error (context cancellation) from Pump")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Pump did not return after context cancellation")
	}
}
