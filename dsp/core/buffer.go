package core

// EnsureLen returns buf resliced to n when its capacity allows, otherwise
// a new zeroed slice of length n. Reused contents are not cleared.
func EnsureLen(buf []float64, n int) []float64 {
	switch {
	case n <= 0:
		return buf[:0]
	case cap(buf) >= n:
		return buf[:n]
	default:
		return make([]float64, n)
	}
}

// ZeroChannels silences channels [from, len(bufs)) of a planar buffer.
func ZeroChannels(bufs [][]float64, from int) {
	if from < 0 {
		from = 0
	}
	for ch := from; ch < len(bufs); ch++ {
		clear(bufs[ch])
	}
}

// CopyInto copies min(len(dst), len(src)) samples and returns the count.
func CopyInto(dst, src []float64) int {
	return copy(dst, src)
}

// Deinterleave splits interleaved frames into planar channels. It copies
// min(len(dst[ch]), len(src)/len(dst)) frames and returns that count.
func Deinterleave(dst [][]float64, src []float64) int {
	channels := len(dst)
	if channels == 0 {
		return 0
	}
	frames := len(src) / channels
	for ch := range dst {
		if len(dst[ch]) < frames {
			frames = len(dst[ch])
		}
	}
	for i := 0; i < frames; i++ {
		for ch := range dst {
			dst[ch][i] = src[i*channels+ch]
		}
	}
	return frames
}

// Interleave packs planar channels into interleaved frames and returns the
// number of frames written.
func Interleave(dst []float64, src [][]float64) int {
	channels := len(src)
	if channels == 0 {
		return 0
	}
	frames := len(dst) / channels
	for ch := range src {
		if len(src[ch]) < frames {
			frames = len(src[ch])
		}
	}
	for i := 0; i < frames; i++ {
		for ch := range src {
			dst[i*channels+ch] = src[ch][i]
		}
	}
	return frames
}
