package biquad

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestMagnitudeSquared_MatchesResponse(t *testing.T) {
	c := Coefficients{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04}
	sr := 48000.0

	for _, freq := range []float64{100, 500, 1000, 5000, 10000, 20000} {
		h := c.Response(freq, sr)
		fromResponse := real(h)*real(h) + imag(h)*imag(h)
		fromClosed := c.MagnitudeSquared(freq, sr)
		if !almostEqual(fromClosed, fromResponse, 1e-10) {
			t.Errorf("freq=%v: MagnitudeSquared=%.15f, |Response|^2=%.15f", freq, fromClosed, fromResponse)
		}
	}
}

func TestMagnitudeDB_MatchesMagnitudeSquared(t *testing.T) {
	c := Coefficients{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04}
	for _, freq := range []float64{100, 1000, 10000} {
		db := c.MagnitudeDB(freq, 48000)
		want := 10 * math.Log10(c.MagnitudeSquared(freq, 48000))
		if !almostEqual(db, want, 1e-12) {
			t.Errorf("freq=%v: MagnitudeDB=%.15f, want %.15f", freq, db, want)
		}
	}
}

func TestPhase_MatchesResponse(t *testing.T) {
	c := Coefficients{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04}
	for _, freq := range []float64{100, 1000, 10000} {
		if got, want := c.Phase(freq, 48000), cmplx.Phase(c.Response(freq, 48000)); !almostEqual(got, want, 1e-12) {
			t.Errorf("freq=%v: Phase=%.15f, want %.15f", freq, got, want)
		}
	}
}

func TestResponse_Identity(t *testing.T) {
	c := Identity()
	for _, freq := range []float64{0, 100, 1000, 10000, 24000} {
		if mag := cmplx.Abs(c.Response(freq, 48000)); !almostEqual(mag, 1, 1e-12) {
			t.Errorf("freq=%v: |H|=%v, want 1", freq, mag)
		}
	}
}

func TestResponse_Allpass(t *testing.T) {
	a1, a2 := -0.5, 0.3
	c := Coefficients{B0: a2, B1: a1, B2: 1, A1: a1, A2: a2}
	for _, freq := range []float64{100, 1000, 10000, 20000} {
		if mag := cmplx.Abs(c.Response(freq, 48000)); !almostEqual(mag, 1, 1e-10) {
			t.Errorf("freq=%v: |H|=%.15f, want 1", freq, mag)
		}
	}
}

func TestSection_ImpulseResponse(t *testing.T) {
	c := Coefficients{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04}
	s := NewSection(c)
	s.ProcessSample(0.5)
	s.ProcessSample(0.3)
	saved := s.State()

	ir := s.ImpulseResponse(8)
	if s.State() != saved {
		t.Fatal("ImpulseResponse modified section state")
	}

	ref := NewSection(c)
	for i, want := range ir {
		var x float64
		if i == 0 {
			x = 1
		}
		if got := ref.ProcessSample(x); !almostEqual(got, want, eps) {
			t.Errorf("ir[%d]: got %.15f, want %.15f", i, got, want)
		}
	}

	if s.ImpulseResponse(0) != nil {
		t.Error("ImpulseResponse(0) should return nil")
	}
}
