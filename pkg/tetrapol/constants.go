// Package tetrapol implements the physical-channel receiver core of a
// TETRAPOL (PAS 0001-2) demodulated-bitstream decoder: frame synchronization,
// line-code inversion, convolutional decoding with erasure flags, CRC
// validation and blind scrambling-key detection.
package tetrapol

// Band identifies which TETRAPOL band a physical channel operates on.
// Only UHF carries a fully implemented decode path; VHF is accepted at
// construction but fails explicitly in the pipeline (see ErrUnsupportedBand).
type Band int

const (
	BandVHF Band = iota
	BandUHF
)

func (b Band) String() string {
	switch b {
	case BandVHF:
		return "VHF"
	case BandUHF:
		return "UHF"
	default:
		return "unknown"
	}
}

// RCHType identifies whether a physical channel carries control or traffic.
// Only CONTROL is implemented; TRAFFIC fails explicitly (see ErrUnsupportedMode).
type RCHType int

const (
	RCHControl RCHType = iota
	RCHTraffic
)

func (t RCHType) String() string {
	switch t {
	case RCHControl:
		return "CONTROL"
	case RCHTraffic:
		return "TRAFFIC"
	default:
		return "unknown"
	}
}

// FrameNo is the frame number carried by a decoded frame, an integer in
// [0,199], or FrameNoUnknown before the physical channel has observed one.
type FrameNo int

// FrameNoUnknown marks a frame number not yet established by a successful decode.
const FrameNoUnknown FrameNo = -1

// FrameType values as carried in decoded payload byte 0.
type FrameType int

const (
	FrameTypeData FrameType = 0
)

const (
	// MaxFrameSyncErr is the maximum tolerated Hamming distance, summed
	// over two consecutive sync words, for acquisition, and the maximum
	// tolerated sum of current + previous sync error during tracking.
	MaxFrameSyncErr = 1

	// FrameHdrLen is the length in bits of a frame's sync header.
	FrameHdrLen = 8
	// FrameDataLen is the length in bits of a frame's encoded payload.
	FrameDataLen = 152
	// FrameLen is the total bit length of one raw frame.
	FrameLen = FrameHdrLen + FrameDataLen

	// DecodedLen is the number of bits (and erasure flags) a successful
	// convolutional decode of one frame produces.
	DecodedLen = 76

	// ScrDetect marks a physical channel running blind SCR detection
	// instead of a fixed scrambling key.
	ScrDetect = -1

	// ScrCandidates is the number of candidate scrambling keys scored by
	// the SCR detector (keys run 0..ScrCandidates-1).
	ScrCandidates = 128

	// MaxFrameNo bounds the modulo-200 rolling frame counter.
	MaxFrameNo = 200

	// BitBufferCapacity is the bit-buffer's capacity, ten frames worth of bits.
	BitBufferCapacity = 10 * FrameLen
)

// frameSyncWord is the differentially-encoded 7-bit pattern found at
// offsets 1..7 of every frame header. Offset 0 is the differential seed bit
// and is excluded from comparison.
var frameSyncWord = [7]byte{1, 0, 1, 0, 0, 1, 1}
