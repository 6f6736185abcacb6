//go:build amd64 && !purego

// Package avx2 registers the biquad kernel picked on AVX2-capable CPUs.
package avx2

import (
	"github.com/cwbudde/algo-wasabi/dsp/filter/biquad/internal/arch/registry"
	"github.com/cwbudde/algo-vecmath/cpu"
)

func init() {
	registry.Global.Register(registry.OpEntry{
		Name:         "avx2",
		SIMDLevel:    cpu.SIMDAVX2,
		Priority:     20,
		ProcessBlock: processBlock,
	})
}

// processBlock walks the buffer four samples at a time. Each output feeds
// the next state update, so there are no independent lanes to vectorize;
// the unrolled form only trims loop and bounds-check overhead.
func processBlock(c registry.Coefficients, d0, d1 float64, buf []float64) (newD0, newD1 float64) {
	k := section{c.B0, c.B1, c.B2, c.A1, c.A2}

	for len(buf) >= 4 {
		q := buf[:4:4]
		q[0], d0, d1 = k.step(q[0], d0, d1)
		q[1], d0, d1 = k.step(q[1], d0, d1)
		q[2], d0, d1 = k.step(q[2], d0, d1)
		q[3], d0, d1 = k.step(q[3], d0, d1)
		buf = buf[4:]
	}

	for i, x := range buf {
		buf[i], d0, d1 = k.step(x, d0, d1)
	}

	return d0, d1
}

type section struct{ b0, b1, b2, a1, a2 float64 }

// step advances one transposed direct form II sample.
func (k section) step(x, d0, d1 float64) (y, nd0, nd1 float64) {
	y = k.b0*x + d0
	return y, k.b1*x - k.a1*y + d1, k.b2*x - k.a2*y
}
