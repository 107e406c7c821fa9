// Package testhelpers provides synthetic TETRAPOL bitstream generators and
// a small integration-test harness.
package testhelpers

import (
	"context"
	"testing"
	"time"

	"github.com/dbehnke/tetrapol-phys/pkg/logger"
	"github.com/dbehnke/tetrapol-phys/pkg/tetrapol"
)

// ValidDecodedFrame builds a well-formed 76-bit CCH payload for multiblock
// index (fn0, fn1), with a CRC-valid forwarded payload derived from a fixed
// deterministic message so DefaultCRCChecker accepts it.
func ValidDecodedFrame(fn0, fn1 byte) [tetrapol.DecodedLen]byte {
	var msg [48]byte
	for i := range msg {
		msg[i] = byte((i + int(fn0) + 2*int(fn1)) % 2)
	}
	payload := tetrapol.BuildCRCPayload(msg)
	return tetrapol.BuildDecodedBits(tetrapol.FrameTypeData, fn0, fn1, payload, 0, 0)
}

// BuildFrameBits encodes a raw 160-bit frame for decoded under scr, as a
// slice of hard-decided bits (one per byte) suitable for PhysicalChannel.Recv.
func BuildFrameBits(decoded [tetrapol.DecodedLen]byte, scr int) []byte {
	frame := tetrapol.EncodeFrame(decoded, scr)
	return frame[:]
}

// MultiblockCycle returns the concatenated bits of four in-order frames
// (block indices 0..3) encoded under scr, a complete multiblock cycle.
func MultiblockCycle(scr int) []byte {
	var bits []byte
	for idx := 0; idx < 4; idx++ {
		fn0 := byte(idx % 2)
		fn1 := byte(idx / 2)
		bits = append(bits, BuildFrameBits(ValidDecodedFrame(fn0, fn1), scr)...)
	}
	return bits
}

// Suite bundles the common fixtures an integration test needs: a quiet
// logger and a bounded context that is always cancelled via Cleanup.
type Suite struct {
	T      *testing.T
	Logger *logger.Logger
	Ctx    context.Context
	Cancel context.CancelFunc
}

// NewSuite constructs a Suite with a timeout-bounded context.
func NewSuite(t *testing.T, timeout time.Duration) *Suite {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return &Suite{
		T:      t,
		Logger: logger.New(logger.Config{Level: "error"}),
		Ctx:    ctx,
		Cancel: cancel,
	}
}

// WaitFor polls condition until it becomes true or timeout elapses,
// returning whether it succeeded.
func (s *Suite) WaitFor(condition func() bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}
