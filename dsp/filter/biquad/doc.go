// Package biquad provides biquad (second-order IIR) filter runtime primitives.
//
// A [Section] implements Direct Form II Transposed processing for a single
// second-order section defined by [Coefficients]. Each Section owns its own
// delay line, so one Section is needed per channel and per filter role.
//
// Coefficients may be replaced between blocks with [Section.SetCoefficients]
// without clearing the delay line. Coefficient design lives in
// dsp/filter/design.
package biquad
