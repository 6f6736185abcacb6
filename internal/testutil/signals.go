// Package testutil holds deterministic test signals and assertions shared
// by the package tests.
package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a sine wave starting at phase 0.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Planar returns channels independent copies of signal.
func Planar(signal []float64, channels int) [][]float64 {
	out := make([][]float64, channels)
	for ch := range out {
		out[ch] = append([]float64(nil), signal...)
	}
	return out
}

// ClonePlanar deep-copies a planar buffer.
func ClonePlanar(buf [][]float64) [][]float64 {
	out := make([][]float64, len(buf))
	for ch := range buf {
		out[ch] = append([]float64(nil), buf[ch]...)
	}
	return out
}
