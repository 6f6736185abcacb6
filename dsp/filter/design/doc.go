// Package design provides biquad coefficient designers.
//
// The functions produce [biquad.Coefficients] for dsp/filter/biquad using the
// RBJ cookbook formulas. Designers never return non-finite coefficients:
// out-of-range inputs fall back to passthrough, and [ClampCutoff] keeps a
// requested cutoff strictly inside (0, Nyquist).
package design
