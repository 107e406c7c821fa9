package tetrapol

// This file implements the frame synchronizer: acquisition of two
// consecutive sync words in the raw bit buffer, and steady-state tracking
// with a geometrically-accumulating error budget.

// cmpFrameSync returns the Hamming distance between the expected 7-bit sync
// word and the bits at data[1..7]. Offset 0 is the differential seed bit
// and is excluded from the comparison; matching against the raw stream
// (before differential decoding) keeps the search polarity-only.
func cmpFrameSync(data []byte) int {
	errs := 0
	for i, want := range frameSyncWord {
		if data[i+1] != want {
			errs++
		}
	}
	return errs
}

// syncState holds the synchronizer's tracking state: whether frame sync is
// currently held, the error count of the most recent sync word, and the
// geometric accumulator that eventually declares sync lost.
type syncState struct {
	hasFrameSync bool
	lastSyncErr  int
	totalSyncErr int
}

// acquire scans buf from offset 0 looking for two consecutive sync words
// one frame apart. On success it discards the bits preceding the match,
// resets the error counters, and returns true. On failure it discards
// everything except the last FrameLen+FrameHdrLen bits, which have not
// been tried as a start offset and may belong to an incoming frame, and
// returns false.
func (s *syncState) acquire(buf *bitBuffer) bool {
	offs := 0
	syncErr := MaxFrameSyncErr + 1
	for offs+FrameLen+FrameHdrLen < buf.len() {
		data := buf.slice(offs, FrameLen+FrameHdrLen)
		syncErr = cmpFrameSync(data) + cmpFrameSync(data[FrameLen:])
		if syncErr <= MaxFrameSyncErr {
			break
		}
		offs++
	}

	buf.discard(offs)

	if syncErr <= MaxFrameSyncErr {
		s.hasFrameSync = true
		s.lastSyncErr = 0
		s.totalSyncErr = 0
		return true
	}
	return false
}

// syncLostThreshold is the total accumulated sync error at which tracking
// gives up and re-enters acquisition.
const syncLostThreshold = FrameLen

// extract consumes exactly one frame from the head of buf during tracking.
// It returns (frame, ok, lost): ok is false if fewer
// than FrameLen bits are buffered; lost is true if this frame pushed the
// cumulative sync error over threshold, in which case no frame is returned
// and the caller must transition has_frame_sync to false.
func (s *syncState) extract(buf *bitBuffer) (frame rawFrame, ok bool, lost bool) {
	if buf.len() < FrameLen {
		return rawFrame{}, false, false
	}

	syncErr := cmpFrameSync(buf.slice(0, FrameHdrLen))
	if syncErr+s.lastSyncErr > MaxFrameSyncErr {
		s.totalSyncErr = 1 + 2*s.totalSyncErr
		if s.totalSyncErr >= syncLostThreshold {
			s.lastSyncErr = syncErr
			return rawFrame{}, false, true
		}
	} else {
		s.totalSyncErr = 0
	}
	s.lastSyncErr = syncErr

	payload := buf.slice(FrameHdrLen, FrameDataLen)
	copy(frame.data[:], payload)
	differentialDecode(frame.data[:], 0)

	buf.discard(FrameLen)
	return frame, true, false
}

// differentialDecode inverts the line's differential encoding in place:
// data[i] <- data[i] XOR data[i-1] (ascending), with data[-1] = lastBit,
// i.e. a prefix XOR. It returns the last decoded bit. Applied with seed 0
// after differentialEncode (adjacent-bit XOR), it is the identity on any
// bit sequence.
func differentialDecode(data []byte, lastBit byte) byte {
	for i := range data {
		lastBit = data[i] ^ lastBit
		data[i] = lastBit
	}
	return lastBit
}
