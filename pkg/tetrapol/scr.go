package tetrapol

// scrDetector blindly detects the scrambling constant: it scores every
// candidate key against CRC success on each accepted raw frame and commits
// to a key once the confidence gap between the best and second-best score
// is strictly exceeded.
type scrDetector struct {
	stat       [ScrCandidates]int
	confidence int
	guess      int
}

func newScrDetector(confidence int) *scrDetector {
	return &scrDetector{confidence: confidence}
}

// reset clears all per-candidate scores.
func (d *scrDetector) reset() {
	d.stat = [ScrCandidates]int{}
}

// score runs the decode pipeline for every candidate key against a scratch
// copy of f's payload, updating the per-key statistics, and returns the key
// with the best score plus whether that key should now be committed.
//
// The differential-decoded payload is key-independent and shared across all
// 128 candidates; only descramble through convDecode repeat per candidate.
func (d *scrDetector) score(f *rawFrame, crc CRCChecker) (guess int, commit bool) {
	for scr := 0; scr < ScrCandidates; scr++ {
		scratch := f.data

		descramble(&scratch, scr)
		diffPrecodeInverse(&scratch)
		deinterleave(&scratch)

		bits, erasure, errs := convDecode(scratch)
		df := DecodedFrame{FrameNo: f.frameNo, Data: bits, Erasure: erasure}

		if errs > 0 || !crc.Check(&df, FrameTypeData) {
			d.stat[scr] -= 2
			if d.stat[scr] < 0 {
				d.stat[scr] = 0
			}
			continue
		}

		d.stat[scr]++
	}

	best, second := d.topTwo()
	d.guess = best

	if d.stat[best]-d.confidence > d.stat[second] {
		return best, true
	}
	return best, false
}

// topTwo finds the index of the best score and a runner-up. A candidate
// replaces best iff its score >= the current best score, and the displaced
// best becomes second; a candidate that does not beat best never updates
// second, so second is not necessarily the second-highest score. An
// equal-scored later key displaces an earlier one; iteration must stay in
// ascending key order for results to be reproducible.
func (d *scrDetector) topTwo() (best, second int) {
	best, second = 0, 1
	if d.stat[0] < d.stat[1] {
		best, second = 1, 0
	}
	for scr := 2; scr < ScrCandidates; scr++ {
		if d.stat[scr] >= d.stat[best] {
			second = best
			best = scr
		}
	}
	return best, second
}
