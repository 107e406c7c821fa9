package tetrapol

import "testing"

func TestDefaultCRCCheckerAcceptsValidTrailer(t *testing.T) {
	var msg [48]byte
	for i := range msg {
		msg[i] = byte((i * 5) % 2)
	}
	payload := BuildCRCPayload(msg)

	var df DecodedFrame
	df.Data[0] = byte(FrameTypeData)
	copy(df.Data[3:67], payload[:])

	if !(DefaultCRCChecker{}).Check(&df, FrameTypeData) {
		t.Fatal("Check() = false for a correctly built payload")
	}
}

func TestDefaultCRCCheckerRejectsCorruptedMessage(t *testing.T) {
	var msg [48]byte
	for i := range msg {
		msg[i] = byte((i * 5) % 2)
	}
	payload := BuildCRCPayload(msg)
	payload[0] ^= 1 // corrupt a message bit without updating the trailer

	var df DecodedFrame
	copy(df.Data[3:67], payload[:])

	if (DefaultCRCChecker{}).Check(&df, FrameTypeData) {
		t.Fatal("Check() = true for a payload with a corrupted message bit")
	}
}

func TestEncodeTrailerDeterministic(t *testing.T) {
	msg := []byte{1, 0, 1, 1, 0, 0, 1, 0}
	a := EncodeTrailer(msg)
	b := EncodeTrailer(msg)
	if a != b {
		t.Fatalf("EncodeTrailer not deterministic: %d != %d", a, b)
	}
}

func TestPackUnpackBitsRoundTrip(t *testing.T) {
	bits := []byte{1, 0, 1, 1, 0, 0, 1, 0, 1, 1}
	packed := packBits(bits)
	got := unpackBits(packed, len(bits))
	for i := range bits {
		if got[i] != bits[i] {
			t.Fatalf("unpackBits(packBits(x))[%d] = %d, want %d", i, got[i], bits[i])
		}
	}
}
