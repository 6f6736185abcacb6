// Package preset holds the built-in Wasabi programs and reads and writes
// user presets as JSON.
package preset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/cwbudde/algo-wasabi/plugin/params"
)

// ErrIndexOutOfRange is returned by Apply for an index outside [0, Count()).
var ErrIndexOutOfRange = errors.New("preset: index out of range")

// Preset is a named set of parameter values. Bypass is never part of a
// preset; applying one leaves it untouched.
type Preset struct {
	Name   string
	Values params.Values
}

func builtin(name string, drive, rng, blend, volume, midFreq, midGain, hpf, lpf, distType float64) Preset {
	var v params.Values
	v[params.Drive] = drive
	v[params.Range] = rng
	v[params.Blend] = blend
	v[params.Volume] = volume
	v[params.MidFreq] = midFreq
	v[params.MidGain] = midGain
	v[params.HighPassFreq] = hpf
	v[params.LowPassFreq] = lpf
	v[params.DistortionType] = distType
	return Preset{Name: name, Values: v}
}

var builtins = [...]Preset{
	builtin("Wasabi Warfare", 1.0, 2.0, 0.9, 1.0, 1000, 6, 100, 6000, 0.0),
	builtin("Up Your Nose", 1.5, 3.0, 0.95, 1.2, 800, 8, 150, 5000, 0.5),
	builtin("Sushi Roll", 1.2, 2.5, 0.9, 1.3, 1200, 7, 120, 7000, 1.0),
	builtin("Soy Sauce", 1.8, 4.0, 1.0, 1.0, 900, 9, 200, 4500, 0.5),
	builtin("Soba", 0.8, 1.5, 0.85, 1.1, 1100, 5, 80, 8000, 0.0),
}

// Builtin returns the factory presets in program order.
func Builtin() []Preset {
	out := make([]Preset, len(builtins))
	copy(out, builtins[:])
	return out
}

// Count returns the number of factory presets.
func Count() int { return len(builtins) }

// Name returns the name of factory preset i, or "" if i is out of range.
func Name(i int) string {
	if i < 0 || i >= len(builtins) {
		return ""
	}
	return builtins[i].Name
}

// Clamp limits i to a valid factory preset index.
func Clamp(i int) int {
	return min(max(i, 0), len(builtins)-1)
}

// Apply writes factory preset i into store.
func Apply(store *params.Store, i int) error {
	if i < 0 || i >= len(builtins) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	builtins[i].ApplyTo(store)
	return nil
}

// ApplyTo writes every non-bypass value of p into store.
func (p Preset) ApplyTo(store *params.Store) {
	for id := range params.ID(params.Count) {
		if id == params.Bypass {
			continue
		}
		store.Set(id, p.Values[id])
	}
}

// FromStore captures the current values of store as a preset.
func FromStore(name string, store *params.Store) Preset {
	return Preset{Name: name, Values: store.Snapshot()}
}

type presetFile struct {
	Name   string             `json:"name"`
	Params map[string]float64 `json:"params"`
}

// MarshalJSON encodes the preset as {"name": ..., "params": {key: value}}.
func (p Preset) MarshalJSON() ([]byte, error) {
	f := presetFile{Name: p.Name, Params: make(map[string]float64, params.Count-1)}
	for _, spec := range params.Specs() {
		if spec.ID == params.Bypass {
			continue
		}
		f.Params[spec.Key] = p.Values[spec.ID]
	}
	return json.Marshal(f)
}

// UnmarshalJSON decodes a preset. Missing parameters take their defaults;
// unknown keys are an error.
func (p *Preset) UnmarshalJSON(data []byte) error {
	var f presetFile
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}

	values := params.Defaults()
	for key, v := range f.Params {
		id, ok := params.Lookup(key)
		if !ok {
			return fmt.Errorf("preset %q: %w: %q", f.Name, params.ErrUnknownParameter, key)
		}
		values[id] = params.SpecFor(id).Clamp(v)
	}

	p.Name = f.Name
	p.Values = values
	return nil
}

// LoadJSON reads a preset file.
func LoadJSON(path string) (Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, fmt.Errorf("preset: %w", err)
	}

	var p Preset
	if err := json.Unmarshal(data, &p); err != nil {
		return Preset{}, fmt.Errorf("preset: %s: %w", path, err)
	}
	return p, nil
}

// SaveJSON writes p to path, indented.
func SaveJSON(path string, p Preset) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("preset: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("preset: %w", err)
	}
	return nil
}
