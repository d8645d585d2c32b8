package gpubuf

import "testing"

func TestBufferRoundTripU32(t *testing.T) {
	b := NewBuffer(64)
	defer b.Release()

	b.PutU32(0, 0xdeadbeef)
	b.PutU32(4, 42)

	if got := b.LoadU32(0); got != 0xdeadbeef {
		t.Errorf("LoadU32(0) = %#x, want 0xdeadbeef", got)
	}
	if got := b.LoadU32(4); got != 42 {
		t.Errorf("LoadU32(4) = %d, want 42", got)
	}
}

func TestBufferRoundTripF32(t *testing.T) {
	b := NewBuffer(16)
	defer b.Release()

	b.PutF32(0, 3.5)
	if got := b.LoadF32(0); got != 3.5 {
		t.Errorf("LoadF32(0) = %v, want 3.5", got)
	}
}

func TestBufferSubWordPacking(t *testing.T) {
	b := NewBuffer(16)
	defer b.Release()

	// Pack two bytes MSB-first into a single word, mirroring
	// PackedField's offset assignment.
	var word uint32
	word |= uint32(0xAB) << 24
	word |= uint32(0xCD) << 16
	b.PutU32(0, word)

	if got := ExtractBits(b.LoadU32(0), 24, 8); got != 0xAB {
		t.Errorf("ExtractBits(24,8) = %#x, want 0xab", got)
	}
	if got := ExtractBits(b.LoadU32(0), 16, 8); got != 0xCD {
		t.Errorf("ExtractBits(16,8) = %#x, want 0xcd", got)
	}
}

func TestBufferGrowsOnDemand(t *testing.T) {
	b := NewBuffer(4)
	defer b.Release()

	b.PutU8(100, 7)
	if b.Len() != 101 {
		t.Errorf("Len() = %d, want 101", b.Len())
	}
	if got := b.LoadU8(100); got != 7 {
		t.Errorf("LoadU8(100) = %d, want 7", got)
	}
}

func TestPoolReuse(t *testing.T) {
	buf := Get(100)
	if cap(buf) < 100 {
		t.Fatalf("cap(buf) = %d, want >= 100", cap(buf))
	}
	buf = append(buf, 1, 2, 3)
	Put(buf)

	again := Get(100)
	if cap(again) < 100 {
		t.Fatalf("cap(again) = %d, want >= 100", cap(again))
	}
	if len(again) != 0 {
		t.Errorf("len(again) = %d, want 0", len(again))
	}
}
