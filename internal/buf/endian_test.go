package buf

import "testing"

func TestEndianHelpers(t *testing.T) {
	data := []byte{0x01, 0x23, 0x45, 0x67, 0x89}

	if got := U32LE(data); got != 0x67452301 {
		t.Fatalf("U32LE = 0x%x, want 0x67452301", got)
	}
	if got := U32LE(data[:3]); got != 0 {
		t.Fatalf("U32LE short = 0x%x, want 0", got)
	}

	PutU32LE(data[1:], 0xdeadbeef)
	if got := U32LE(data[1:]); got != 0xdeadbeef {
		t.Fatalf("PutU32LE round trip = 0x%x", got)
	}
	if data[0] != 0x01 {
		t.Fatalf("PutU32LE wrote before its slice")
	}

	short := []byte{1, 2}
	PutU32LE(short, 0xffffffff)
	if short[0] != 1 || short[1] != 2 {
		t.Fatalf("PutU32LE modified a short buffer")
	}
}
