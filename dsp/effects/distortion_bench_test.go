package effects

import "testing"

func BenchmarkDistortionProcessInPlace(b *testing.B) {
	for _, m := range allModes {
		b.Run(m.String(), func(b *testing.B) {
			var d Distortion
			d.Configure(m, 1, 2, 1, 0.9)

			buf := make([]float64, 1024)
			for i := range buf {
				buf[i] = float64(i%64)/64 - 0.5
			}

			b.SetBytes(int64(len(buf) * 8))
			b.ReportAllocs()
			for b.Loop() {
				d.ProcessInPlace(buf)
			}
		})
	}
}
