// Package effects provides the Wasabi distortion engine: a noise gate, three
// selectable waveshapers, post-gain and dry/wet blend.
//
// Everything in this package is a pure per-sample function or a small value
// type, safe to call from a real-time audio callback. Construction through
// [NewDistortion] validates parameter ranges; [Distortion.Configure] is the
// unchecked per-block path used by the block processor.
package effects
