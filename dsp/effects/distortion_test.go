package effects

import (
	"math"
	"testing"
)

var allModes = []DistortionMode{DistortionModeWa, DistortionModeSa, DistortionModeBi}

func mustDistortion(t *testing.T, opts ...DistortionOption) *Distortion {
	t.Helper()
	d, err := NewDistortion(opts...)
	if err != nil {
		t.Fatalf("NewDistortion() error = %v", err)
	}
	return d
}

func TestDistortionValidation(t *testing.T) {
	bad := []struct {
		name string
		opt  DistortionOption
	}{
		{"mode", WithDistortionMode(DistortionMode(7))},
		{"negative mode", WithDistortionMode(DistortionMode(-1))},
		{"drive", WithDistortionDrive(2.5)},
		{"drive nan", WithDistortionDrive(math.NaN())},
		{"range", WithDistortionRange(-0.1)},
		{"volume", WithDistortionVolume(3)},
		{"blend", WithDistortionBlend(1.01)},
	}
	for _, tc := range bad {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewDistortion(tc.opt); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestDistortionDefaults(t *testing.T) {
	d := mustDistortion(t)
	if d.Mode() != DistortionModeWa || d.Drive() != 0.5 || d.Blend() != 0.8 {
		t.Fatalf("unexpected defaults: %+v", *d)
	}
	if d.PreGain() != 5 || d.PostGain() != 2 {
		t.Fatalf("pre/post gain = %v/%v, want 5/2", d.PreGain(), d.PostGain())
	}
}

func TestModeFromParam(t *testing.T) {
	tests := []struct {
		v    float64
		want DistortionMode
	}{
		{0, DistortionModeWa},
		{0.24, DistortionModeWa},
		{0.25, DistortionModeSa}, // round half away from zero
		{0.5, DistortionModeSa},
		{0.74, DistortionModeSa},
		{0.75, DistortionModeBi},
		{1, DistortionModeBi},
		{-3, DistortionModeWa},
		{4, DistortionModeBi},
		{math.NaN(), DistortionModeWa},
	}
	for _, tt := range tests {
		if got := ModeFromParam(tt.v); got != tt.want {
			t.Errorf("ModeFromParam(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}

	for _, m := range allModes {
		if got := ModeFromParam(m.Param()); got != m {
			t.Errorf("ModeFromParam(%v.Param()) = %v", m, got)
		}
	}
}

func TestGate(t *testing.T) {
	tests := []struct {
		x, want float64
	}{
		{0, GateFactor},
		{0.005, GateFactor},
		{-0.0099, GateFactor},
		{0.01, 1},
		{-0.01, 1},
		{0.5, 1},
	}
	for _, tt := range tests {
		if got := Gate(tt.x); got != tt.want {
			t.Errorf("Gate(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}
}

func TestShapeFormulas(t *testing.T) {
	const drive = 0.7
	for _, x := range []float64{-3, -0.4, 0, 0.1, 0.8, 2.5} {
		wa := math.Tanh(x*(1+drive)) * 0.9
		if got := Shape(DistortionModeWa, x, drive); math.Abs(got-wa) > shapeTol {
			t.Errorf("Wa(%v) = %v, want %v", x, got, wa)
		}

		sa := math.Max(-0.9, math.Min(0.9, math.Tanh(x*0.6)*1.8*(1+drive*2)))
		if got := Shape(DistortionModeSa, x, drive); math.Abs(got-sa) > shapeTol {
			t.Errorf("Sa(%v) = %v, want %v", x, got, sa)
		}

		folded := x - 0.2*x*x*x
		bi := math.Max(-0.9, math.Min(0.9, math.Sin(folded*math.Pi*(0.5+drive*0.5))))
		if got := Shape(DistortionModeBi, x, drive); math.Abs(got-bi) > shapeTol {
			t.Errorf("Bi(%v) = %v, want %v", x, got, bi)
		}
	}
}

func TestMathTanhOddAndPrecise(t *testing.T) {
	for x := -20.0; x <= 20; x += 0.0173 {
		got, want := mathTanh(x), math.Tanh(x)
		if math.Abs(got-want) > shapeTol {
			t.Fatalf("mathTanh(%v) = %v, want %v", x, got, want)
		}
		if mathTanh(-x) != -got {
			t.Fatalf("mathTanh not odd at %v: %v vs %v", x, mathTanh(-x), got)
		}
	}

	// Relative precision holds close to zero, where gated samples land.
	for _, x := range []float64{1e-6, 1e-4, 1e-3, 0.011} {
		got, want := mathTanh(x), math.Tanh(x)
		if math.Abs(got-want) > shapeTol*want {
			t.Errorf("mathTanh(%v) = %v, want %v", x, got, want)
		}
	}

	for _, x := range []float64{-1e300, -21, 21, 1e300} {
		if got := mathTanh(x); got != math.Copysign(1, x) {
			t.Errorf("mathTanh(%v) = %v, want %v", x, got, math.Copysign(1, x))
		}
	}
}

func TestShapeBounded(t *testing.T) {
	for _, m := range allModes {
		for _, drive := range []float64{0, 1, 2} {
			for _, x := range []float64{-1e300, -50, -1, 0, 1, 50, 1e300} {
				y := Shape(m, x, drive)
				if math.IsNaN(y) || math.Abs(y) > ShapeCeiling+1e-15 {
					t.Fatalf("%v drive=%v x=%v: out %v not in [-0.9, 0.9]", m, drive, x, y)
				}
			}
		}
	}
}

// Below threshold the gated input is a tenth of the ungated one for every
// mode, and the blended output is gated a second time.
func TestProcessSample_NoiseGate(t *testing.T) {
	const x = 0.005
	for _, m := range allModes {
		d := mustDistortion(t, WithDistortionMode(m), WithDistortionDrive(1), WithDistortionRange(2))

		ungatedWet := Shape(m, x*d.PreGain(), d.Drive()) * d.PostGain()
		gatedWet := Shape(m, x*GateFactor*d.PreGain(), d.Drive()) * d.PostGain()

		want := (gatedWet*d.Blend() + x*GateFactor*(1-d.Blend())) * GateFactor
		if got := d.ProcessSample(x); math.Abs(got-want) > 1e-15 {
			t.Fatalf("%v: got %v, want %v", m, got, want)
		}

		// The gated shaper input is 10x smaller than the ungated one.
		if gatedWet == ungatedWet {
			t.Fatalf("%v: gate had no effect on shaper input", m)
		}
	}

	// With blend=0 the sample is attenuated by both gate applications.
	d := mustDistortion(t, WithDistortionBlend(0))
	if got, want := d.ProcessSample(x), x*GateFactor*GateFactor; math.Abs(got-want) > 1e-18 {
		t.Fatalf("dry gate: got %v, want %v", got, want)
	}
	if got := d.ProcessSample(0.5); got != 0.5 {
		t.Fatalf("dry above threshold: got %v, want 0.5", got)
	}
}

func TestProcessSample_WaMonotonic(t *testing.T) {
	d := mustDistortion(t,
		WithDistortionMode(DistortionModeWa),
		WithDistortionDrive(0),
		WithDistortionRange(1),
		WithDistortionBlend(1),
	)

	prev := d.ProcessSample(GateThreshold)
	for x := GateThreshold + 0.001; x <= 1; x += 0.001 {
		y := d.ProcessSample(x)
		if y <= prev {
			t.Fatalf("not strictly increasing at %v: %v <= %v", x, y, prev)
		}
		if neg := d.ProcessSample(-x); neg != -y {
			t.Fatalf("not odd-symmetric at %v: %v vs %v", x, neg, y)
		}
		prev = y
	}
}

func TestProcessSample_BlendBoundaries(t *testing.T) {
	for _, m := range allModes {
		dry := mustDistortion(t, WithDistortionMode(m), WithDistortionBlend(0))
		wet := mustDistortion(t, WithDistortionMode(m), WithDistortionBlend(1))

		for _, x := range []float64{-0.8, -0.2, -0.003, 0, 0.004, 0.3, 0.9} {
			g := Gate(x)
			if got := dry.ProcessSample(x); got != x*g*g {
				t.Fatalf("%v blend=0 x=%v: got %v, want %v", m, x, got, x*g*g)
			}

			want := Shape(m, x*g*wet.PreGain(), wet.Drive()) * wet.PostGain() * g
			if got := wet.ProcessSample(x); math.Abs(got-want) > 1e-15 {
				t.Fatalf("%v blend=1 x=%v: got %v, want %v", m, x, got, want)
			}
		}
	}
}

func TestProcessSample_ZeroRangeIsDryOnly(t *testing.T) {
	for _, m := range allModes {
		d := mustDistortion(t, WithDistortionMode(m), WithDistortionDrive(0), WithDistortionRange(0))
		for _, x := range []float64{-0.5, -0.001, 0.2, 0.7} {
			g := Gate(x)
			want := x * g * (1 - d.Blend()) * g
			if got := d.ProcessSample(x); math.Abs(got-want) > 1e-15 {
				t.Fatalf("%v x=%v: got %v, want %v", m, x, got, want)
			}
		}
	}
}

func TestProcessSample_FiniteAndBounded(t *testing.T) {
	// Post-gain ceiling: 0.9 * (0.5 + 2*1.5) = 3.15 for the wet part.
	for _, m := range allModes {
		for _, drive := range []float64{0, 1, 2} {
			for _, r := range []float64{0, 2.5, 5} {
				d := mustDistortion(t, WithDistortionMode(m), WithDistortionDrive(drive),
					WithDistortionRange(r), WithDistortionVolume(2), WithDistortionBlend(1))
				for _, x := range []float64{-1e6, -1, -0.5, 0, 0.5, 1, 1e6} {
					y := d.ProcessSample(x)
					if math.IsNaN(y) || math.IsInf(y, 0) || math.Abs(y) > 3.15+1e-12 {
						t.Fatalf("%v drive=%v range=%v x=%v: out %v", m, drive, r, x, y)
					}
				}
			}
		}
	}
}

func TestConfigureMatchesOptions(t *testing.T) {
	a := mustDistortion(t,
		WithDistortionMode(DistortionModeBi),
		WithDistortionDrive(1.5),
		WithDistortionRange(3),
		WithDistortionVolume(1.2),
		WithDistortionBlend(0.95),
	)
	var b Distortion
	b.Configure(DistortionModeBi, 1.5, 3, 1.2, 0.95)

	if *a != b {
		t.Fatalf("Configure mismatch: %+v vs %+v", *a, b)
	}
}

func TestProcessInPlace(t *testing.T) {
	d := mustDistortion(t, WithDistortionMode(DistortionModeSa))
	in := []float64{-0.6, -0.005, 0, 0.02, 0.4}
	buf := append([]float64(nil), in...)
	d.ProcessInPlace(buf)
	for i, x := range in {
		if want := d.ProcessSample(x); buf[i] != want {
			t.Fatalf("sample %d: got %v, want %v", i, buf[i], want)
		}
	}
}
