package harmonics

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-wasabi/internal/testutil"
)

func tone(sr float64, n int, partials map[int]float64, f0 float64) []float64 {
	out := make([]float64, n)
	for k, amp := range partials {
		for i := range out {
			out[i] += amp * math.Sin(2*math.Pi*float64(k)*f0*float64(i)/sr)
		}
	}
	return out
}

func TestAnalyzePureSine(t *testing.T) {
	sig := testutil.DeterministicSine(1000, 48000, 0.5, 4410)

	res, err := Analyze(sig, Config{SampleRate: 48000, Fundamental: 1000})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if math.Abs(res.FundamentalLevel-0.5) > 0.005 {
		t.Fatalf("FundamentalLevel = %v, want 0.5", res.FundamentalLevel)
	}
	if res.THD > 1e-4 {
		t.Fatalf("THD = %v, want ~0", res.THD)
	}
	if res.THDdB > -80 {
		t.Fatalf("THDdB = %v, want < -80", res.THDdB)
	}
	if math.Abs(res.Peak-0.5) > 1e-3 {
		t.Fatalf("Peak = %v", res.Peak)
	}
	if math.Abs(res.RMS-0.5/math.Sqrt2) > 1e-3 {
		t.Fatalf("RMS = %v", res.RMS)
	}
}

func TestAnalyzeKnownHarmonics(t *testing.T) {
	sig := tone(48000, 4410, map[int]float64{1: 1, 2: 0.1, 3: 0.05}, 1000)

	res, err := Analyze(sig, Config{SampleRate: 48000, Fundamental: 1000, MaxHarmonics: 4})
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Harmonics) != 4 {
		t.Fatalf("len(Harmonics) = %d, want 4", len(res.Harmonics))
	}
	want := []float64{0.1, 0.05, 0, 0}
	for i, w := range want {
		if math.Abs(res.Harmonics[i]-w) > 1e-4 {
			t.Fatalf("H%d = %v, want %v", i+2, res.Harmonics[i], w)
		}
	}
	if math.Abs(res.THD-math.Sqrt(0.0125)) > 1e-4 {
		t.Fatalf("THD = %v, want %v", res.THD, math.Sqrt(0.0125))
	}
}

func TestAnalyzeFindsFundamental(t *testing.T) {
	sig := tone(44100, 8192, map[int]float64{1: 0.8, 3: 0.2}, 440)

	res, err := Analyze(sig, Config{SampleRate: 44100})
	if err != nil {
		t.Fatal(err)
	}

	binHz := 44100.0 / 8192
	if math.Abs(res.Fundamental-440) > binHz {
		t.Fatalf("Fundamental = %v, want 440 +- %v", res.Fundamental, binHz)
	}
	if res.Harmonics[1] < 0.2 || res.Harmonics[1] > 0.3 {
		t.Fatalf("H3 = %v, want ~0.25", res.Harmonics[1])
	}
}

func TestAnalyzeClippedSineHasOddHarmonics(t *testing.T) {
	sig := testutil.DeterministicSine(500, 48000, 1, 9600)
	for i, v := range sig {
		sig[i] = math.Tanh(4 * v)
	}

	res, err := Analyze(sig, Config{SampleRate: 48000, Fundamental: 500, MaxHarmonics: 4})
	if err != nil {
		t.Fatal(err)
	}

	if res.THD < 0.1 {
		t.Fatalf("THD = %v, want heavy distortion", res.THD)
	}
	if res.Harmonics[0] > 1e-3 || res.Harmonics[2] > 1e-3 {
		t.Fatalf("even harmonics present in a symmetric clip: %v", res.Harmonics)
	}
	if res.Harmonics[1] < 0.1 {
		t.Fatalf("H3 = %v, want > 0.1", res.Harmonics[1])
	}
}

func TestAnalyzeDC(t *testing.T) {
	sig := testutil.DeterministicSine(1000, 48000, 0.5, 4800)
	for i := range sig {
		sig[i] += 0.25
	}

	res, err := Analyze(sig, Config{SampleRate: 48000, Fundamental: 1000})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(res.DC-0.25) > 1e-9 {
		t.Fatalf("DC = %v, want 0.25", res.DC)
	}
}

func TestAnalyzeSilence(t *testing.T) {
	res, err := Analyze(make([]float64, 1024), Config{SampleRate: 48000, Fundamental: 1000})
	if err != nil {
		t.Fatal(err)
	}
	if res.FundamentalLevel != 0 || res.THD != 0 || !math.IsInf(res.THDdB, -1) {
		t.Fatalf("silence: %+v", res)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	sig := testutil.DeterministicSine(1000, 48000, 1, 1024)

	if _, err := Analyze(nil, Config{SampleRate: 48000}); !errors.Is(err, ErrEmptySignal) {
		t.Fatalf("err = %v, want ErrEmptySignal", err)
	}

	tests := []struct {
		name string
		cfg  Config
		sig  []float64
	}{
		{"zero rate", Config{}, sig},
		{"nan rate", Config{SampleRate: math.NaN()}, sig},
		{"fundamental at nyquist", Config{SampleRate: 48000, Fundamental: 24000}, sig},
		{"negative fundamental", Config{SampleRate: 48000, Fundamental: -1}, sig},
		{"fundamental near dc", Config{SampleRate: 48000, Fundamental: 10}, sig[:64]},
		{"too short to search", Config{SampleRate: 48000}, sig[:2]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Analyze(tt.sig, tt.cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRatioToDB(t *testing.T) {
	if got := ratioToDB(0.1); math.Abs(got+20) > 0.01 {
		t.Fatalf("ratioToDB(0.1) = %v, want -20", got)
	}
	if !math.IsInf(ratioToDB(0), -1) {
		t.Fatal("ratioToDB(0) should be -Inf")
	}
	if !math.IsInf(ratioToDB(-0.5), -1) {
		t.Fatal("ratioToDB(-0.5) should be -Inf")
	}
	if got := ratioToDB(2); math.Abs(got-6.0206) > 0.01 {
		t.Fatalf("ratioToDB(2) = %v, want 6.02", got)
	}
}

func BenchmarkAnalyze(b *testing.B) {
	sig := testutil.DeterministicSine(1000, 48000, 0.5, 8192)
	cfg := Config{SampleRate: 48000, Fundamental: 1000}

	b.ReportAllocs()

	for b.Loop() {
		if _, err := Analyze(sig, cfg); err != nil {
			b.Fatal(err)
		}
	}
}
