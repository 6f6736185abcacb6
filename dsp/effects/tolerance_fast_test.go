//go:build fastmath

package effects

// shapeTol bounds the difference between Shape and the math package
// formulas. The fast tanh is within 2e-6 of math.Tanh.
const shapeTol = 5e-6
