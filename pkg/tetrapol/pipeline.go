package tetrapol

// This file implements the per-frame decode pipeline: descramble,
// differential precoding inverse, deinterleave, convolutional decode. The
// differential decode of the raw payload (seed 0) happens earlier, in the
// synchronizer, because it is independent of the sync word comparison and
// of the scrambling key under test.

// descramble XORs every payload bit with the scrambling LFSR sequence
// offset by scr; scr == 0 means no scrambling. Applying it twice with the
// same key is the identity.
func descramble(data *[FrameDataLen]byte, scr int) {
	if scr == 0 {
		return
	}
	for k := 0; k < FrameDataLen; k++ {
		data[k] ^= scrambTable[(k+scr)%127]
	}
}

// diffPrecodeInverse undoes the UHF differential precoding: iterating from
// the top down, each position XORs against the position diffPrecodUHF[j]
// bits behind it.
func diffPrecodeInverse(data *[FrameDataLen]byte) {
	for j := FrameDataLen - 1; j > 0; j-- {
		data[j] ^= data[j-int(diffPrecodUHF[j])]
	}
}

// deinterleave applies the fixed UHF control/data permutation.
func deinterleave(data *[FrameDataLen]byte) {
	var tmp [FrameDataLen]byte
	copy(tmp[:], data[:])
	for j := 0; j < FrameDataLen; j++ {
		data[j] = tmp[interleaveDataUHF[j]]
	}
}

// convDecode applies the rate-1/2 convolutional decode with
// redundant-derivation erasure detection, run over two segments (first 26
// output bits modulo 52, remaining 50 output bits modulo 100). It returns
// the decoded bits, their erasure flags, and the total erasure count.
func convDecode(data [FrameDataLen]byte) (out, erasure [DecodedLen]byte, errs int) {
	errs += channelDecode(out[:26], erasure[:26], data[:52])
	errs += channelDecode(out[26:], erasure[26:], data[52:])
	return out, erasure, errs
}

// channelDecode implements PAS 0001-2 §6.1.2/§6.2.2's channel decoder over
// one segment: in has length 2*resLen and indices are taken modulo that
// length. For each output bit i, res[i] is derived from one redundant pair
// and alt[i] from a second, independent redundant triple; they must agree
// or the bit is marked as an erasure.
func channelDecode(res, erasure []byte, in []byte) int {
	resLen := len(res)
	mod := 2 * resLen
	errs := 0
	for i := 0; i < resLen; i++ {
		r := in[(2*i+2)%mod] ^ in[(2*i+3)%mod]
		a := in[(2*i+5)%mod] ^ in[(2*i+6)%mod] ^ in[(2*i+7)%mod]
		res[i] = r
		e := a ^ r
		erasure[i] = e
		errs += int(e)
	}
	return errs
}
