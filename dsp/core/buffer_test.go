package core

import "testing"

func TestEnsureLenReuse(t *testing.T) {
	buf := make([]float64, 4, 8)

	out := EnsureLen(buf, 6)
	if len(out) != 6 {
		t.Fatalf("len = %d, want 6", len(out))
	}

	if cap(out) != cap(buf) {
		t.Fatalf("cap = %d, want %d", cap(out), cap(buf))
	}
}

func TestCopyInto(t *testing.T) {
	dst := make([]float64, 2)

	n := CopyInto(dst, []float64{1, 2, 3})
	if n != 2 {
		t.Fatalf("n = %d, want 2", n)
	}

	if dst[0] != 1 || dst[1] != 2 {
		t.Fatalf("unexpected dst: %#v", dst)
	}
}

func TestZeroChannels(t *testing.T) {
	bufs := [][]float64{{1, 2}, {3, 4}, {5, 6}}
	ZeroChannels(bufs, 1)

	if bufs[0][0] != 1 || bufs[0][1] != 2 {
		t.Fatalf("channel 0 modified: %v", bufs[0])
	}
	for ch := 1; ch < 3; ch++ {
		for i, v := range bufs[ch] {
			if v != 0 {
				t.Fatalf("channel %d sample %d = %v, want 0", ch, i, v)
			}
		}
	}
}

func TestInterleaveRoundTrip(t *testing.T) {
	src := []float64{1, -1, 2, -2, 3, -3}
	planar := [][]float64{make([]float64, 3), make([]float64, 3)}

	if n := Deinterleave(planar, src); n != 3 {
		t.Fatalf("Deinterleave() = %d, want 3", n)
	}
	if planar[0][2] != 3 || planar[1][2] != -3 {
		t.Fatalf("unexpected planar data: %v", planar)
	}

	out := make([]float64, len(src))
	if n := Interleave(out, planar); n != 3 {
		t.Fatalf("Interleave() = %d, want 3", n)
	}
	for i := range src {
		if out[i] != src[i] {
			t.Fatalf("index %d: got %v, want %v", i, out[i], src[i])
		}
	}
}
