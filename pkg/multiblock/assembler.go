// Package multiblock reassembles consecutive CCH frames into logical
// 256-bit blocks. It is the concrete implementation of the
// MultiblockAssembler / SegmentationLayer collaborators that the core
// receiver treats as injected contracts.
package multiblock

import (
	"sync"

	"github.com/dbehnke/tetrapol-phys/pkg/logger"
	"github.com/dbehnke/tetrapol-phys/pkg/tetrapol"
)

// payloadLen is the size in bits of one frame's forwarded payload
// (tetrapol.DecodedFrame.Payload()), fixed by the frame format itself.
const payloadLen = 64

// BlockLen is the size in bits of one emitted logical block: four
// payloadLen-bit frame payloads concatenated in index order.
const BlockLen = 4 * payloadLen

// Block is one reassembled logical block, 256 bits, payload[0..63] from
// block index 0 through payload[192..255] from block index 3.
type Block struct {
	ChannelID string
	Bits      [BlockLen]byte
}

// Assembler reassembles 4 consecutive CCH frames (block indices 0..3) into
// one logical block, emitting it via Emit. Out-of-order or skipped indices
// discard the in-progress block; a new block starts only at index 0, so
// TETRAPOL logical blocks are never reassembled with gaps.
type Assembler struct {
	channelID string
	log       *logger.Logger
	emit      func(Block)

	mu       sync.Mutex
	next     int
	scratch  [BlockLen]byte
	inFlight bool
}

// New constructs an Assembler. emit is called synchronously from Process
// whenever a complete 0..3 cycle closes; it must not block.
func New(channelID string, log *logger.Logger, emit func(Block)) *Assembler {
	return &Assembler{
		channelID: channelID,
		log:       log.WithComponent("multiblock"),
		emit:      emit,
	}
}

// Process implements tetrapol.MultiblockAssembler. It appends the frame's
// forwarded payload into the in-progress block at blockIndex. Indices must
// arrive in order starting at 0; any other index discards whatever was
// accumulated. An out-of-order index 0 starts a fresh cycle; any other
// out-of-order index is dropped and assembly waits for the next index 0.
func (a *Assembler) Process(frame *tetrapol.DecodedFrame, blockIndex int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if blockIndex != a.next {
		if a.inFlight {
			a.log.Warn("multiblock sequence gap, discarding partial block",
				logger.Int("expected", a.next), logger.Int("got", blockIndex))
		}
		a.resetLocked()
		if blockIndex != 0 {
			// Not the start of a cycle either; wait for the next 0.
			return
		}
	}

	copy(a.scratch[blockIndex*payloadLen:], frame.Payload())
	a.inFlight = true
	a.next = blockIndex + 1

	if a.next == 4 {
		block := Block{ChannelID: a.channelID, Bits: a.scratch}
		a.resetLocked()
		if a.emit != nil {
			a.emit(block)
		}
	}
}

// Reset implements tetrapol.MultiblockAssembler. It clears any in-progress
// block without emitting, called by the dispatcher on a new sync epoch or a
// decode/type/CRC failure.
func (a *Assembler) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resetLocked()
}

func (a *Assembler) resetLocked() {
	a.scratch = [BlockLen]byte{}
	a.next = 0
	a.inFlight = false
}

// Segmentation tracks higher-layer message segmentation state across
// multiblock assembly. The receiver core only requires that it be
// resettable in lockstep with the block assembler; decoding of the
// segmented TPDU stream itself lives above this layer.
type Segmentation struct {
	mu     sync.Mutex
	resets int
	log    *logger.Logger
}

// NewSegmentation constructs a Segmentation tracker.
func NewSegmentation(log *logger.Logger) *Segmentation {
	return &Segmentation{log: log.WithComponent("segmentation")}
}

// Reset implements tetrapol.SegmentationLayer.
func (s *Segmentation) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets++
}

// Resets returns the number of times Reset has been called, exposed for
// diagnostics and tests.
func (s *Segmentation) Resets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resets
}
