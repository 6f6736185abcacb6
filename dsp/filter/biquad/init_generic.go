//go:build !amd64 || purego

package biquad

import (
	_ "github.com/cwbudde/algo-wasabi/dsp/filter/biquad/internal/arch/generic" // register generic backend
)
