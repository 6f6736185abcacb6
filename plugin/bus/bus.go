// Package bus negotiates the channel layout the Wasabi processor accepts.
package bus

import (
	"errors"
	"fmt"
)

// ErrUnsupportedLayout is returned for any layout other than mono or
// stereo with matching input and output.
var ErrUnsupportedLayout = errors.New("bus: unsupported layout")

// Layout is the main input and output channel count.
type Layout struct {
	Inputs  int
	Outputs int
}

var (
	// Mono is one channel in and out.
	Mono = Layout{Inputs: 1, Outputs: 1}
	// Stereo is two channels in and out.
	Stereo = Layout{Inputs: 2, Outputs: 2}
)

// Validate accepts mono or stereo outputs with inputs equal to outputs.
func Validate(l Layout) error {
	if l.Outputs != 1 && l.Outputs != 2 {
		return fmt.Errorf("%w: %d output channels", ErrUnsupportedLayout, l.Outputs)
	}
	if l.Inputs != l.Outputs {
		return fmt.Errorf("%w: %d in, %d out", ErrUnsupportedLayout, l.Inputs, l.Outputs)
	}
	return nil
}

// Channels returns the number of channels the processor runs.
func (l Layout) Channels() int { return l.Outputs }

func (l Layout) String() string {
	switch l {
	case Mono:
		return "mono"
	case Stereo:
		return "stereo"
	default:
		return fmt.Sprintf("%din/%dout", l.Inputs, l.Outputs)
	}
}
