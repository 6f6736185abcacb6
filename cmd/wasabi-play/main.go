// Command wasabi-play streams a test tone or WAV loop through the Wasabi
// distortion to the default audio device.
//
// Usage:
//
//	wasabi-play [flags]
//
// While playing, keys 1-5 select a program, b toggles bypass, t cycles the
// distortion type and q quits.
//
// Examples:
//
//	wasabi-play -freq 110 -preset 3
//	wasabi-play -in riff.wav -block 128
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/cwbudde/algo-wasabi/internal/wavio"
	"github.com/cwbudde/algo-wasabi/plugin/wasabi"
)

func main() {
	in := flag.String("in", "", "WAV file to loop (default: sine test tone)")
	rate := flag.Int("rate", 48000, "output sample rate in Hz (a WAV input uses its own rate)")
	block := flag.Int("block", 256, "processing block size in samples")
	freq := flag.Float64("freq", 220, "test tone frequency in Hz")
	amp := flag.Float64("amp", 0.5, "test tone amplitude")
	program := flag.Int("preset", 0, "initial factory program index")
	seconds := flag.Float64("seconds", 0, "stop after this many seconds (0: until q)")
	latency := flag.Duration("latency", 50*time.Millisecond, "device buffer length")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warning, error)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: wasabi-play [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Plays a test tone or WAV loop through the Wasabi distortion.\n")
		fmt.Fprintf(os.Stderr, "%s\n\n", keyHelp)
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	log := logrus.New()
	log.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
	log.SetLevel(level)

	if err := play(playConfig{
		input:   *in,
		rate:    *rate,
		block:   *block,
		freq:    *freq,
		amp:     *amp,
		program: *program,
		seconds: *seconds,
		latency: *latency,
	}, log); err != nil {
		log.WithFields(logrus.Fields{
			"function": "main",
			"error":    err.Error(),
		}).Error("Playback failed")
		os.Exit(1)
	}
}

type playConfig struct {
	input   string
	rate    int
	block   int
	freq    float64
	amp     float64
	program int
	seconds float64
	latency time.Duration
}

func play(cfg playConfig, log *logrus.Logger) error {
	var src source = newToneSource(cfg.freq, float64(cfg.rate), cfg.amp)
	if cfg.input != "" {
		a, err := wavio.ReadFile(cfg.input)
		if err != nil {
			return err
		}
		if a.Frames() == 0 {
			return fmt.Errorf("%s: no audio", cfg.input)
		}
		cfg.rate = a.SampleRate
		src = &loopSource{clip: a.Channels}
	}

	p, err := wasabi.New(wasabi.WithLogger(log))
	if err != nil {
		return err
	}
	if err := p.Prepare(float64(cfg.rate), cfg.block); err != nil {
		return err
	}
	defer p.Release()
	p.SetProgram(cfg.program)

	device, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   cfg.rate,
		ChannelCount: outChannels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   cfg.latency,
	})
	if err != nil {
		return fmt.Errorf("audio device: %w", err)
	}
	<-ready

	out := device.NewPlayer(newPlayer(p, src, cfg.block))
	out.Play()
	defer out.Close()

	log.WithFields(logrus.Fields{
		"function":    "play",
		"sample_rate": cfg.rate,
		"block_size":  cfg.block,
	}).Info("Playback started")

	quit := make(chan struct{})
	restore := startKeyboard(p, quit, log)
	defer restore()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)

	var timeout <-chan time.Time
	if cfg.seconds > 0 {
		timeout = time.After(time.Duration(cfg.seconds * float64(time.Second)))
	}

	select {
	case <-quit:
	case <-sig:
	case <-timeout:
	}

	return device.Err()
}

// startKeyboard reads single key presses from a raw terminal on its own
// goroutine and closes quit on q. Without a terminal it does nothing. The
// returned func restores the terminal.
func startKeyboard(p *wasabi.Plugin, quit chan<- struct{}, log *logrus.Logger) func() {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return func() {}
	}

	old, err := term.MakeRaw(fd)
	if err != nil {
		log.WithFields(logrus.Fields{
			"function": "startKeyboard",
			"error":    err.Error(),
		}).Warn("Keyboard control unavailable")
		return func() {}
	}

	fmt.Fprintf(os.Stdout, "%s\r\n", keyHelp)

	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				return
			}
			if n == 1 && handleKey(p, buf[0], os.Stdout) {
				close(quit)
				return
			}
		}
	}()

	return func() {
		_ = term.Restore(fd, old)
	}
}
