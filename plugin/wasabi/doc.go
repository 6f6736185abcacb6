// Package wasabi is the Wasabi stereo distortion: a block processor that
// runs high-pass, mid-peak, the distortion engine and low-pass at twice the
// host sample rate, and a host-facing Plugin that adds programs, state and
// layout negotiation around it.
//
// Per block the processor reads every parameter once, redesigns the three
// filters, upsamples, filters and distorts each channel, then downsamples
// into the caller's buffer. ProcessBlock never allocates, blocks or logs.
package wasabi
