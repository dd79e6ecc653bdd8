package crypto

import "testing"

func TestLockedBufferReleaseZeroes(t *testing.T) {
	buf := []byte("super-secret-key-material-here!")
	lb := NewLockedBuffer(buf)
	lb.Release()
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("byte %d not zeroed after Release", i)
		}
	}
}

func TestLockedBufferBytesReturnsBackingArray(t *testing.T) {
	buf := []byte("key-material")
	lb := NewLockedBuffer(buf)
	defer lb.Release()
	if &lb.Bytes()[0] != &buf[0] {
		t.Fatal("expected Bytes() to return the same backing array")
	}
}
