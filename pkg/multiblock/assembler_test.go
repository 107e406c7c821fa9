package multiblock

import (
	"bytes"
	"testing"

	"github.com/dbehnke/tetrapol-phys/pkg/logger"
	"github.com/dbehnke/tetrapol-phys/pkg/tetrapol"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Output: &bytes.Buffer{}})
}

func frameWithPayload(fill byte) *tetrapol.DecodedFrame {
	df := &tetrapol.DecodedFrame{}
	for i := 3; i < 67; i++ {
		df.Data[i] = fill
	}
	return df
}

func TestAssemblerEmitsOneBlockForInOrderCycle(t *testing.T) {
	var emitted []Block
	a := New("cch-1", testLogger(), func(b Block) { emitted = append(emitted, b) })

	for idx := 0; idx < 4; idx++ {
		a.Process(frameWithPayload(byte(idx+1)), idx)
	}

	if len(emitted) != 1 {
		t.Fatalf("emitted %d blocks, want 1", len(emitted))
	}
	block := emitted[0]
	if block.ChannelID != "cch-1" {
		t.Fatalf("ChannelID = %q, want cch-1", block.ChannelID)
	}
	for idx := 0; idx < 4; idx++ {
		for i := 0; i < payloadLen; i++ {
			got := block.Bits[idx*payloadLen+i]
			if got != byte(idx+1) {
				t.Fatalf("bit %d of slot %d = %d, want %d", i, idx, got, idx+1)
			}
		}
	}
}

func TestAssemblerDiscardsOutOfOrderSequence(t *testing.T) {
	var emitted []Block
	a := New("cch-1", testLogger(), func(b Block) { emitted = append(emitted, b) })

	a.Process(frameWithPayload(1), 0)
	a.Process(frameWithPayload(2), 1)
	a.Process(frameWithPayload(3), 3) // skip index 2: discards without emitting

	if len(emitted) != 0 {
		t.Fatalf("emitted %d blocks, want 0 after a skipped index", len(emitted))
	}

	// A fresh, correctly-ordered cycle afterward still works.
	a.Process(frameWithPayload(9), 0)
	a.Process(frameWithPayload(9), 1)
	a.Process(frameWithPayload(9), 2)
	a.Process(frameWithPayload(9), 3)
	if len(emitted) != 1 {
		t.Fatalf("emitted %d blocks after recovery cycle, want 1", len(emitted))
	}
}

func TestAssemblerResetClearsInProgressState(t *testing.T) {
	var emitted []Block
	a := New("cch-1", testLogger(), func(b Block) { emitted = append(emitted, b) })

	a.Process(frameWithPayload(1), 0)
	a.Process(frameWithPayload(2), 1)
	a.Reset()
	a.Process(frameWithPayload(3), 2) // not index 0: discarded, nothing to emit
	a.Process(frameWithPayload(3), 3)

	if len(emitted) != 0 {
		t.Fatalf("emitted %d blocks, want 0", len(emitted))
	}
}

func TestSegmentationCountsResets(t *testing.T) {
	s := NewSegmentation(testLogger())
	s.Reset()
	s.Reset()
	s.Reset()
	if got := s.Resets(); got != 3 {
		t.Fatalf("Resets() = %d, want 3", got)
	}
}
