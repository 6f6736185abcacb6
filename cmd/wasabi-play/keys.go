package main

import (
	"fmt"
	"io"

	"github.com/cwbudde/algo-wasabi/dsp/effects"
	"github.com/cwbudde/algo-wasabi/plugin/params"
	"github.com/cwbudde/algo-wasabi/plugin/wasabi"
)

const keyHelp = "keys: 1-5 program, b bypass, t distortion type, q quit"

// handleKey applies one key press and reports whether playback should
// stop. Status lines end in CRLF for raw terminals.
func handleKey(p *wasabi.Plugin, key byte, w io.Writer) bool {
	store := p.Params()

	switch {
	case key == 'q' || key == 'Q' || key == 3: // ctrl-c
		return true
	case key >= '1' && key < '1'+byte(p.NumPrograms()):
		p.SetProgram(int(key - '1'))
		fmt.Fprintf(w, "program %d: %s\r\n", p.CurrentProgram(), p.ProgramName(p.CurrentProgram()))
	case key == 'b' || key == 'B':
		on := !store.Bool(params.Bypass)
		store.SetBool(params.Bypass, on)
		fmt.Fprintf(w, "bypass %v\r\n", on)
	case key == 't' || key == 'T':
		next := (effects.ModeFromParam(store.Value(params.DistortionType)) + 1) % (effects.DistortionModeBi + 1)
		store.Set(params.DistortionType, next.Param())
		fmt.Fprintf(w, "distortion type %s\r\n", next)
	case key == '?' || key == 'h':
		fmt.Fprintf(w, "%s\r\n", keyHelp)
	}

	return false
}
