//go:build integration
// +build integration

package integration

import (
	"testing"
	"time"

	"github.com/dbehnke/tetrapol-phys/internal/testhelpers"
	"github.com/dbehnke/tetrapol-phys/pkg/metrics"
	"github.com/dbehnke/tetrapol-phys/pkg/multiblock"
	"github.com/dbehnke/tetrapol-phys/pkg/tetrapol"
)

// TestFullPipelineAcquiresSyncAndAssemblesBlocks drives a PhysicalChannel
// wired with the real multiblock assembler and Prometheus collector over a
// synthetic bitstream built from several multiblock cycles, exercising the
// same collaborators cmd/tetrapol-decode wires together.
func TestFullPipelineAcquiresSyncAndAssemblesBlocks(t *testing.T) {
	suite := testhelpers.NewSuite(t, 10*time.Second)

	const scr = 7
	var blocks []multiblock.Block
	assembler := multiblock.New("cch-it", suite.Logger, func(b multiblock.Block) {
		blocks = append(blocks, b)
	})

	collector := metrics.NewCollector("cch-it")

	channel, err := tetrapol.NewPhysicalChannel(tetrapol.BandUHF, tetrapol.RCHControl,
		tetrapol.WithMultiblockAssembler(assembler),
		tetrapol.WithInitialSCR(scr),
		tetrapol.WithObserver(collector),
		tetrapol.WithLogger(suite.Logger))
	if err != nil {
		t.Fatalf("NewPhysicalChannel: %v", err)
	}

	var bits []byte
	for cycle := 0; cycle < 3; cycle++ {
		bits = append(bits, testhelpers.MultiblockCycle(scr)...)
	}
	// Trailing frame after the last full cycle: it opens a fourth cycle
	// that never completes, so it adds no block.
	bits = append(bits, testhelpers.BuildFrameBits(testhelpers.ValidDecodedFrame(0, 0), scr)...)

	// The stream is longer than the channel's bit buffer, so it is fed one
	// cycle at a time, with Process draining the buffer between chunks.
	const chunk = 4 * tetrapol.FrameLen
	for off := 0; off < len(bits); off += chunk {
		end := off + chunk
		if end > len(bits) {
			end = len(bits)
		}
		if n := channel.Recv(bits[off:end]); n != end-off {
			t.Fatalf("Recv accepted %d of %d bits", n, end-off)
		}
		channel.Process()
	}

	if !channel.HasFrameSync() {
		t.Fatal("expected frame sync after three clean multiblock cycles")
	}
	if len(blocks) != 3 {
		t.Fatalf("assembled %d blocks, want 3", len(blocks))
	}
	for i, b := range blocks {
		if b.ChannelID != "cch-it" {
			t.Fatalf("block %d ChannelID = %q, want cch-it", i, b.ChannelID)
		}
	}
}
