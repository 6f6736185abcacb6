// Package halfband provides polyphase IIR half-band filters for 2x sample
// rate conversion.
//
// Each filter is a pair of parallel chains of first-order allpass sections,
//
//	y[n] = a*(x[n] - y[n-1]) + x[n-1]
//
// with coefficients designed by [DesignCoefficients] (elliptic half-band
// prototype). Even-indexed coefficients form the first path and
// odd-indexed coefficients the second. The structure is minimum-phase-ish
// and introduces a small frequency-dependent group delay that callers
// accept as latency.
package halfband
