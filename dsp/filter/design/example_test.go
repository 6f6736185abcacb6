package design_test

import (
	"fmt"

	"github.com/cwbudde/algo-wasabi/dsp/filter/design"
)

func Example() {
	const sr = 88200.0

	hp := design.Highpass(100, design.ButterworthQ, sr)
	mid := design.Peak(1000, 6, 1, sr)
	lp := design.Lowpass(6000, 0.7, sr)

	fmt.Printf("hp    50 Hz: %+.2f dB\n", hp.MagnitudeDB(50, sr))
	fmt.Printf("hp   100 Hz: %+.2f dB\n", hp.MagnitudeDB(100, sr))
	fmt.Printf("mid 1000 Hz: %+.2f dB\n", mid.MagnitudeDB(1000, sr))
	fmt.Printf("mid 6000 Hz: %+.2f dB\n", mid.MagnitudeDB(6000, sr))
	fmt.Printf("lp  6000 Hz: %+.2f dB\n", lp.MagnitudeDB(6000, sr))
	fmt.Printf("lp 12000 Hz: %+.2f dB\n", lp.MagnitudeDB(12000, sr))
	// Output:
	// hp    50 Hz: -12.30 dB
	// hp   100 Hz: -3.01 dB
	// mid 1000 Hz: +6.00 dB
	// mid 6000 Hz: +0.18 dB
	// lp  6000 Hz: -3.10 dB
	// lp 12000 Hz: -13.14 dB
}

func ExampleClampCutoff() {
	fmt.Println(design.ClampCutoff(6000, 44100))
	fmt.Println(design.ClampCutoff(30000, 44100))
	fmt.Println(design.ClampCutoff(-5, 44100))
	// Output:
	// 6000
	// 19845
	// 1
}
