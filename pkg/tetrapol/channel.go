package tetrapol

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dbehnke/tetrapol-phys/pkg/logger"
)

// ErrInvalidBand and ErrInvalidRCHType are returned by NewPhysicalChannel
// for out-of-range construction arguments.
var (
	ErrInvalidBand    = errors.New("tetrapol: invalid band")
	ErrInvalidRCHType = errors.New("tetrapol: invalid rch_type")
	// ErrUnsupportedBand is logged by the pipeline when it drops a VHF
	// frame. The VHF deinterleave/precoding tables are not wired up, so the
	// core fails explicitly rather than produce wrong output.
	ErrUnsupportedBand = errors.New("tetrapol: VHF processing not implemented")
	// ErrUnsupportedMode is logged when a frame on a TRAFFIC rch_type is
	// dropped; voice decoding is not part of this receiver.
	ErrUnsupportedMode = errors.New("tetrapol: traffic channel not implemented")
)

// Observer receives side-effect notifications for metrics/event-publishing
// collaborators. All methods must return promptly; PhysicalChannel calls
// them synchronously from Process.
type Observer interface {
	SyncAcquired()
	SyncLost()
	FrameOK(frameNo FrameNo)
	FrameDropped(reason string)
	ScrCommitted(key int)
}

type noopObserver struct{}

func (noopObserver) SyncAcquired()       {}
func (noopObserver) SyncLost()           {}
func (noopObserver) FrameOK(FrameNo)     {}
func (noopObserver) FrameDropped(string) {}
func (noopObserver) ScrCommitted(int)    {}

// PhysicalChannel is a long-lived receiver for one TETRAPOL physical
// channel. It is fed hard-decided bits via Recv and driven by Process from
// a single feed loop; the internal mutex serializes callers that fail to
// do so themselves.
type PhysicalChannel struct {
	mu sync.Mutex

	band    Band
	rchType RCHType

	buf  *bitBuffer
	sync syncState

	frameNo FrameNo

	scr    int // ScrDetect, or a fixed key in [0,127]
	detect *scrDetector

	assembler    MultiblockAssembler
	segmentation SegmentationLayer
	crc          CRCChecker
	log          *logger.Logger
	observer     Observer

	stdout io.Writer
	stderr io.Writer
}

// Option configures a PhysicalChannel at construction.
type Option func(*PhysicalChannel)

// WithMultiblockAssembler injects the multiblock collaborator; defaults to
// a no-op if not supplied.
func WithMultiblockAssembler(a MultiblockAssembler) Option {
	return func(p *PhysicalChannel) { p.assembler = a }
}

// WithSegmentationLayer injects the segmentation-reset collaborator.
func WithSegmentationLayer(s SegmentationLayer) Option {
	return func(p *PhysicalChannel) { p.segmentation = s }
}

// WithCRCChecker injects a CRC validator other than DefaultCRCChecker.
func WithCRCChecker(c CRCChecker) Option {
	return func(p *PhysicalChannel) { p.crc = c }
}

// WithLogger attaches a structured logger; defaults to a discard logger.
func WithLogger(l *logger.Logger) Option {
	return func(p *PhysicalChannel) { p.log = l }
}

// WithObserver attaches a metrics/event observer.
func WithObserver(o Observer) Option {
	return func(p *PhysicalChannel) { p.observer = o }
}

// WithInitialSCR seeds the channel with an already-known scrambling key
// instead of starting in blind-detection mode, e.g. one persisted from a
// previous session.
func WithInitialSCR(scr int) Option {
	return func(p *PhysicalChannel) { p.scr = scr }
}

// WithDiagnosticWriters overrides the legacy stdout/stderr diagnostic
// streams; primarily for tests.
func WithDiagnosticWriters(stdout, stderr io.Writer) Option {
	return func(p *PhysicalChannel) {
		p.stdout = stdout
		p.stderr = stderr
	}
}

// NewPhysicalChannel constructs a PhysicalChannel for the given band and
// rch_type. Invalid arguments return an error instead of a handle.
func NewPhysicalChannel(band Band, rchType RCHType, opts ...Option) (*PhysicalChannel, error) {
	if band != BandVHF && band != BandUHF {
		return nil, ErrInvalidBand
	}
	if rchType != RCHControl && rchType != RCHTraffic {
		return nil, ErrInvalidRCHType
	}

	p := &PhysicalChannel{
		band:         band,
		rchType:      rchType,
		buf:          newBitBuffer(BitBufferCapacity),
		frameNo:      FrameNoUnknown,
		scr:          ScrDetect,
		detect:       newScrDetector(50),
		assembler:    noopAssembler{},
		segmentation: noopSegmentation{},
		crc:          DefaultCRCChecker{},
		log:          logger.New(logger.Config{Level: "info", Format: "text", Output: io.Discard}),
		observer:     noopObserver{},
		stdout:       os.Stdout,
		stderr:       os.Stderr,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Close releases no resources (the core is purely in-memory) but satisfies
// io.Closer for callers that want deferred cleanup.
func (p *PhysicalChannel) Close() error { return nil }

// GetSCR returns the current scrambling key, or ScrDetect while blind
// detection is running.
func (p *PhysicalChannel) GetSCR() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scr
}

// SetSCR fixes the scrambling key and clears accumulated detection scores.
func (p *PhysicalChannel) SetSCR(scr int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scr = scr
	p.detect.reset()
}

// GetSCRConfidence returns the confidence gap required to commit a
// detected SCR.
func (p *PhysicalChannel) GetSCRConfidence() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.detect.confidence
}

// SetSCRConfidence sets the confidence gap required to commit a detected SCR.
func (p *PhysicalChannel) SetSCRConfidence(confidence int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.detect.confidence = confidence
}

// FrameNo returns the physical channel's current rolling frame counter.
func (p *PhysicalChannel) FrameNo() FrameNo {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frameNo
}

// HasFrameSync reports whether the synchronizer is currently locked.
func (p *PhysicalChannel) HasFrameSync() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sync.hasFrameSync
}

// Recv appends hard-decided bits (one per byte, value 0 or 1) to the
// internal bit buffer and returns the count accepted. Overflow is silently
// truncated; callers detect loss by comparing the return to len(data).
func (p *PhysicalChannel) Recv(data []byte) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.recv(data)
}

// Process drives acquisition/tracking and the decode pipeline over
// whatever is currently buffered. It always returns 0; all effects are
// side effects (collaborator calls, diagnostics, metrics).
func (p *PhysicalChannel) Process() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.sync.hasFrameSync {
		if !p.sync.acquire(p.buf) {
			return 0
		}
		fmt.Fprint(p.stderr, "Frame sync found\n")
		p.log.Info("frame sync found")
		p.observer.SyncAcquired()
		p.frameNo = FrameNoUnknown
		p.assembler.Reset()
		p.segmentation.Reset()
	}

	for {
		frame, ok, lost := p.sync.extract(p.buf)
		if lost {
			fmt.Fprint(p.stderr, "Frame sync lost\n")
			p.log.Warn("frame sync lost")
			p.observer.SyncLost()
			p.sync.hasFrameSync = false
			return 0
		}
		if !ok {
			return 0
		}

		// The rolling counter is copied into the frame before decode and
		// read back after: a successful decode stamps the frame with its
		// decoded identity, and the counter follows that. A drop leaves
		// the stamp untouched, so an already-established counter keeps
		// advancing across bad frames while a counter that was never
		// established stays unknown.
		frame.frameNo = p.frameNo
		if p.processFrame(&frame) || frame.frameNo != FrameNoUnknown {
			p.frameNo = FrameNo((int(frame.frameNo) + 1) % MaxFrameNo)
		}
	}
}

// processFrame runs the SCR detector (if active) and then dispatches the
// frame by rch_type. It reports whether the frame decoded successfully,
// in which case f.frameNo has been updated to the decoded frame's identity.
func (p *PhysicalChannel) processFrame(f *rawFrame) bool {
	scr := p.scr
	if scr == ScrDetect {
		guess, commit := p.detect.score(f, p.crc)
		if commit {
			p.scr = guess
			fmt.Fprintf(p.stderr, "SCR detected %d\n", guess)
			p.log.Info("scr detected", logger.Int("scr", guess))
			p.observer.ScrCommitted(guess)
		}
		scr = p.detect.guess
	}

	switch p.rchType {
	case RCHControl:
		return p.processFrameCCH(f, scr)
	default:
		p.log.Error("dropping frame", logger.Error(ErrUnsupportedMode))
		return false
	}
}

// processFrameCCH runs the control-channel decode pipeline over one frame:
// descramble, differential precoding inverse, deinterleave, convolutional
// decode, CRC. Any failure drops the frame and resets the multiblock and
// segmentation collaborators.
func (p *PhysicalChannel) processFrameCCH(f *rawFrame, scr int) bool {
	data := f.data
	descramble(&data, scr)

	if p.band != BandUHF {
		p.log.Error("dropping frame", logger.Error(ErrUnsupportedBand))
		return false
	}

	diffPrecodeInverse(&data)
	deinterleave(&data)

	bits, erasure, errs := convDecode(data)
	df := DecodedFrame{FrameNo: f.frameNo, Data: bits, Erasure: erasure}

	if errs > 0 {
		fmt.Fprintf(p.stdout, "ERR decode frame_no=%03d\n", int(f.frameNo))
		p.log.Warn("decode error", logger.Int("frame_no", int(f.frameNo)), logger.Int("errors", errs))
		p.observer.FrameDropped("decode")
		p.assembler.Reset()
		p.segmentation.Reset()
		return false
	}

	if FrameType(df.Data[0]) != FrameTypeData {
		fmt.Fprintf(p.stdout, "ERR type frame_no=%03d\n", int(f.frameNo))
		p.log.Warn("type error", logger.Int("frame_no", int(f.frameNo)))
		p.observer.FrameDropped("type")
		p.assembler.Reset()
		p.segmentation.Reset()
		return false
	}

	if !p.crc.Check(&df, FrameTypeData) {
		fmt.Fprintf(p.stdout, "ERR crc frame_no=%03d\n", int(f.frameNo))
		p.log.Warn("crc error", logger.Int("frame_no", int(f.frameNo)))
		p.observer.FrameDropped("crc")
		p.assembler.Reset()
		p.segmentation.Reset()
		return false
	}

	asbx, asby := df.ASB()
	fn0, fn1 := df.Data[1], df.Data[2]
	fmt.Fprintf(p.stdout, "OK frame_no=%03d fn=%d%d asb=%d%d scr=%03d ",
		int(df.FrameNo), fn1, fn0, asbx, asby, scr)
	writeBits(p.stdout, df.Payload())
	fmt.Fprint(p.stdout, "\n")

	p.log.Info("frame ok",
		logger.Int("frame_no", int(df.FrameNo)),
		logger.Int("block_index", df.BlockIndex()),
		logger.Int("scr", scr))
	p.observer.FrameOK(df.FrameNo)

	p.assembler.Process(&df, df.BlockIndex())
	f.frameNo = df.FrameNo

	return true
}

// writeBits writes a slice of 0/1-valued bytes as ASCII digits, matching
// the legacy print_buf diagnostic format.
func writeBits(w io.Writer, bits []byte) {
	buf := make([]byte, len(bits))
	for i, b := range bits {
		buf[i] = '0' + b
	}
	w.Write(buf)
}
