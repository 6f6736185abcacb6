//go:build !fastmath

package effects

// shapeTol bounds the difference between Shape and the math package
// formulas.
const shapeTol = 1e-15
