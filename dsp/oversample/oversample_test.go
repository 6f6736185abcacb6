package oversample

import (
	"math"
	"testing"
)

func sineBlock(n int, freq, sampleRate, amp float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/sampleRate)
	}
	return out
}

func newPrepared(t *testing.T, channels, blockSize int, opts ...Option) *Oversampler {
	t.Helper()
	o, err := New(channels, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := o.Prepare(blockSize); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	return o
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for zero channels")
	}
	if _, err := New(2, WithCoefficientCount(0)); err == nil {
		t.Fatal("expected error for zero coefficients")
	}
	if _, err := New(2, WithCoefficientCount(33)); err == nil {
		t.Fatal("expected error for too many coefficients")
	}
	if _, err := New(2, WithTransition(0.5)); err == nil {
		t.Fatal("expected error for transition 0.5")
	}
	if _, err := New(2, WithTransition(math.NaN())); err == nil {
		t.Fatal("expected error for NaN transition")
	}

	o, err := New(2, WithCoefficientCount(4), WithTransition(0.1))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := len(o.Coefficients()); got != 4 {
		t.Fatalf("coefficient count = %d, want 4", got)
	}
	if err := o.Prepare(0); err == nil {
		t.Fatal("expected error for zero block size")
	}
}

func TestUpsample_DoublesLength(t *testing.T) {
	o := newPrepared(t, 2, 512)
	in := [][]float64{make([]float64, 512), make([]float64, 512)}

	wide := o.Upsample(in)
	if len(wide) != 2 {
		t.Fatalf("channels = %d, want 2", len(wide))
	}
	for ch := range wide {
		if len(wide[ch]) != 1024 {
			t.Fatalf("ch%d len = %d, want 1024", ch, len(wide[ch]))
		}
	}
}

func TestRoundTrip_SilentBlockStaysSilent(t *testing.T) {
	o := newPrepared(t, 2, 512)
	buf := [][]float64{make([]float64, 512), make([]float64, 512)}

	for range 3 {
		o.Upsample(buf)
		o.Downsample(buf)
		for ch := range buf {
			for i, v := range buf[ch] {
				if v != 0 {
					t.Fatalf("ch%d[%d] = %v, want 0", ch, i, v)
				}
			}
		}
	}
}

func TestRoundTrip_ChannelsAreIndependent(t *testing.T) {
	o := newPrepared(t, 2, 256)
	buf := [][]float64{sineBlock(256, 1000, 44100, 0.5), make([]float64, 256)}

	o.Upsample(buf)
	o.Downsample(buf)

	for i, v := range buf[1] {
		if v != 0 {
			t.Fatalf("silent channel leaked at %d: %v", i, v)
		}
	}

	var peak float64
	for _, v := range buf[0] {
		peak = math.Max(peak, math.Abs(v))
	}
	if peak < 0.4 || peak > 0.55 {
		t.Fatalf("sine channel peak = %v, want ~0.5", peak)
	}
}

func TestRoundTrip_GainAfterSettling(t *testing.T) {
	const sr = 44100.0
	o := newPrepared(t, 1, 441)

	// 1 kHz gives whole cycles per 441-sample block; compare RMS only.
	var rms float64
	for range 20 {
		block := sineBlock(441, 1000, sr, 1)
		buf := [][]float64{block}
		o.Upsample(buf)
		o.Downsample(buf)

		rms = 0
		for _, v := range block {
			rms += v * v
		}
		rms = math.Sqrt(rms / float64(len(block)))
	}

	if math.Abs(rms-1/math.Sqrt2) > 1e-3 {
		t.Fatalf("round-trip RMS = %v, want %v", rms, 1/math.Sqrt2)
	}
}

func TestUpsample_TruncatesToBlockSize(t *testing.T) {
	o := newPrepared(t, 1, 64)
	wide := o.Upsample([][]float64{make([]float64, 100)})
	if len(wide[0]) != 128 {
		t.Fatalf("len = %d, want 128", len(wide[0]))
	}
}

func TestUpsample_ExtraChannelsIgnored(t *testing.T) {
	o := newPrepared(t, 1, 32)
	in := [][]float64{make([]float64, 32), make([]float64, 32)}
	if wide := o.Upsample(in); len(wide) != 1 {
		t.Fatalf("channels = %d, want 1", len(wide))
	}
}

func TestPrepare_ResizesAndResets(t *testing.T) {
	o := newPrepared(t, 1, 16)
	buf := [][]float64{sineBlock(16, 3000, 44100, 1)}
	o.Upsample(buf)
	o.Downsample(buf)

	if err := o.Prepare(64); err != nil {
		t.Fatal(err)
	}
	if o.BlockSize() != 64 {
		t.Fatalf("BlockSize() = %d, want 64", o.BlockSize())
	}

	silent := [][]float64{make([]float64, 64)}
	o.Upsample(silent)
	o.Downsample(silent)
	for i, v := range silent[0] {
		if v != 0 {
			t.Fatalf("state survived Prepare at %d: %v", i, v)
		}
	}
}

func TestPrepare_ShrinkReusesWideBuffers(t *testing.T) {
	o := newPrepared(t, 2, 64)
	before := &o.wide[0][:cap(o.wide[0])][0]

	if err := o.Prepare(16); err != nil {
		t.Fatal(err)
	}
	if got := len(o.wide[0]); got != Factor*16 {
		t.Fatalf("len(wide[0]) = %d, want %d", got, Factor*16)
	}
	if &o.wide[0][0] != before {
		t.Fatal("shrinking Prepare reallocated the wide buffer")
	}

	// A regrown buffer must match a freshly prepared one.
	if err := o.Prepare(64); err != nil {
		t.Fatal(err)
	}
	fresh := newPrepared(t, 2, 64)
	in := sineBlock(64, 1000, 44100, 0.5)
	got := o.Upsample([][]float64{in, in})
	want := fresh.Upsample([][]float64{in, in})
	for i := range want[0] {
		if got[0][i] != want[0][i] {
			t.Fatalf("sample %d after regrow: got %v, want %v", i, got[0][i], want[0][i])
		}
	}
}

func TestReset_ClearsState(t *testing.T) {
	o := newPrepared(t, 2, 32)
	buf := [][]float64{sineBlock(32, 5000, 44100, 1), sineBlock(32, 7000, 44100, 1)}
	o.Upsample(buf)
	o.Downsample(buf)

	o.Reset()

	silent := [][]float64{make([]float64, 32), make([]float64, 32)}
	o.Upsample(silent)
	o.Downsample(silent)
	for ch := range silent {
		for i, v := range silent[ch] {
			if v != 0 {
				t.Fatalf("ch%d[%d] = %v after Reset, want 0", ch, i, v)
			}
		}
	}
}

func TestRoundTrip_ZeroAlloc(t *testing.T) {
	o := newPrepared(t, 2, 512)
	buf := [][]float64{sineBlock(512, 440, 48000, 0.5), sineBlock(512, 660, 48000, 0.5)}

	allocs := testing.AllocsPerRun(100, func() {
		wide := o.Upsample(buf)
		for ch := range wide {
			for i := range wide[ch] {
				wide[ch][i] *= 0.5
			}
		}
		o.Downsample(buf)
	})
	if allocs != 0 {
		t.Fatalf("allocs per block = %v, want 0", allocs)
	}
}

func BenchmarkRoundTrip(b *testing.B) {
	o, _ := New(2)
	_ = o.Prepare(512)
	buf := [][]float64{make([]float64, 512), make([]float64, 512)}
	for i := range buf[0] {
		buf[0][i] = math.Sin(float64(i) * 0.05)
		buf[1][i] = math.Cos(float64(i) * 0.05)
	}

	b.SetBytes(2 * 512 * 8)
	b.ReportAllocs()
	for b.Loop() {
		o.Upsample(buf)
		o.Downsample(buf)
	}
}
