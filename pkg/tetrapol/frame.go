package tetrapol

// rawFrame is one raw frame: the 8 sync header bits have
// already been stripped off by the synchronizer, leaving the FrameDataLen
// encoded payload bits, differentially decoded with seed 0.
type rawFrame struct {
	frameNo FrameNo
	data    [FrameDataLen]byte
}

// DecodedFrame is the output of the convolutional decoder: DecodedLen
// payload bits, one erasure flag per bit (1 = the decoder's two redundant
// derivations disagreed), and the frame number carried through from the
// raw frame.
type DecodedFrame struct {
	FrameNo FrameNo
	Data    [DecodedLen]byte
	Erasure [DecodedLen]byte
}

// ErrorCount returns the number of erasure flags set; a nonzero count
// means the frame is dropped before CRC is even checked.
func (d *DecodedFrame) ErrorCount() int {
	n := 0
	for _, e := range d.Erasure {
		n += int(e)
	}
	return n
}

// Payload returns the 64-bit forwarded payload (data[3..66]) of a decoded
// CCH frame.
func (d *DecodedFrame) Payload() []byte {
	return d.Data[3:67]
}

// BlockIndex returns the 2-bit multiblock index fn1*2+fn0 carried in data[1],data[2].
func (d *DecodedFrame) BlockIndex() int {
	fn0 := int(d.Data[1])
	fn1 := int(d.Data[2])
	return fn1*2 + fn0
}

// ASB returns the two status bits data[67],data[68] (reported, not used by the core).
func (d *DecodedFrame) ASB() (asbx, asby byte) {
	return d.Data[67], d.Data[68]
}

// MultiblockAssembler is the injected collaborator that reassembles
// consecutive CCH frames into logical blocks.
type MultiblockAssembler interface {
	Process(frame *DecodedFrame, blockIndex int)
	Reset()
}

// SegmentationLayer is the injected collaborator that tracks higher-layer
// message segmentation state across multiblock assembly.
type SegmentationLayer interface {
	Reset()
}

// CRCChecker validates a decoded frame's integrity per PAS 0001-2.
type CRCChecker interface {
	Check(df *DecodedFrame, frameType FrameType) bool
}

// noopAssembler and noopSegmentation are used when the caller does not
// inject its own collaborators; they satisfy the contract (reset calls are
// no-ops) without requiring every test to stand up a full assembler.
type noopAssembler struct{}

func (noopAssembler) Process(*DecodedFrame, int) {}
func (noopAssembler) Reset()                     {}

type noopSegmentation struct{}

func (noopSegmentation) Reset() {}
