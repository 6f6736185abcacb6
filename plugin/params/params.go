// Package params is the Wasabi parameter store: ten named parameters, each
// held in its own atomic slot so the audio thread can read without locks
// while a control thread writes.
//
// Reads of different parameters are independent; a block may observe a
// partial update across parameters.
package params

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync/atomic"
)

// ErrUnknownParameter is returned for a key or id that names no parameter.
var ErrUnknownParameter = errors.New("params: unknown parameter")

// ID identifies a parameter. IDs are stable and used in saved state.
type ID int

const (
	Drive ID = iota
	Range
	Blend
	Volume
	MidFreq
	MidGain
	HighPassFreq
	LowPassFreq
	DistortionType
	Bypass

	// Count is the number of parameters.
	Count = int(Bypass) + 1
)

// Spec describes one parameter.
type Spec struct {
	ID      ID
	Key     string
	Name    string
	Unit    string
	Min     float64
	Max     float64
	Default float64
	// Steps is the number of discrete steps (0 for continuous).
	Steps int
}

var specs = [Count]Spec{
	{ID: Drive, Key: "drive", Name: "Drive", Min: 0, Max: 2, Default: 0.5},
	{ID: Range, Key: "range", Name: "Range", Min: 0, Max: 5, Default: 1},
	{ID: Blend, Key: "blend", Name: "Blend", Min: 0, Max: 1, Default: 0.8},
	{ID: Volume, Key: "volume", Name: "Volume", Min: 0, Max: 2, Default: 1},
	{ID: MidFreq, Key: "midFreq", Name: "Mid Frequency", Unit: "Hz", Min: 500, Max: 2000, Default: 1000},
	{ID: MidGain, Key: "midGain", Name: "Mid Gain", Unit: "dB", Min: 0, Max: 12, Default: 6},
	{ID: HighPassFreq, Key: "highPassFreq", Name: "High Pass Freq", Unit: "Hz", Min: 50, Max: 500, Default: 100},
	{ID: LowPassFreq, Key: "lowPassFreq", Name: "Low Pass Freq", Unit: "Hz", Min: 2000, Max: 12000, Default: 6000},
	{ID: DistortionType, Key: "distortionType", Name: "Distortion Type", Min: 0, Max: 1, Default: 0},
	{ID: Bypass, Key: "bypass", Name: "Bypass", Min: 0, Max: 1, Default: 0, Steps: 1},
}

// Specs returns the parameter table in ID order.
func Specs() []Spec {
	out := make([]Spec, Count)
	copy(out, specs[:])
	return out
}

// SpecFor returns the spec of id. It panics if id is out of range.
func SpecFor(id ID) Spec {
	return specs[id]
}

// Valid reports whether id names a parameter.
func (id ID) Valid() bool {
	return id >= 0 && int(id) < Count
}

func (id ID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("ID(%d)", int(id))
	}
	return specs[id].Key
}

// Lookup finds a parameter by key. Matching is case-insensitive.
func Lookup(key string) (ID, bool) {
	for i := range specs {
		if strings.EqualFold(specs[i].Key, key) {
			return specs[i].ID, true
		}
	}
	return 0, false
}

// Clamp limits v to the spec's range. Stepped parameters snap to the
// nearest step.
func (s Spec) Clamp(v float64) float64 {
	v = math.Min(math.Max(v, s.Min), s.Max)
	if s.Steps > 0 {
		step := (s.Max - s.Min) / float64(s.Steps)
		v = s.Min + math.Round((v-s.Min)/step)*step
	}
	return v
}

// Normalize maps a plain value to [0, 1].
func (s Spec) Normalize(plain float64) float64 {
	if s.Max <= s.Min {
		return 0
	}
	return (s.Clamp(plain) - s.Min) / (s.Max - s.Min)
}

// Denormalize maps a [0, 1] value to the plain range.
func (s Spec) Denormalize(normalized float64) float64 {
	normalized = math.Min(math.Max(normalized, 0), 1)
	return s.Clamp(s.Min + normalized*(s.Max-s.Min))
}

// Format renders a plain value for display.
func (s Spec) Format(v float64) string {
	switch {
	case s.Steps == 1:
		if v >= 0.5 {
			return "on"
		}
		return "off"
	case s.Unit == "Hz" && v >= 1000:
		return fmt.Sprintf("%.2f kHz", v/1000)
	case s.Unit != "":
		return fmt.Sprintf("%.1f %s", v, s.Unit)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

// Values is a plain copy of every parameter, indexed by ID.
type Values [Count]float64

// Defaults returns the default value of every parameter.
func Defaults() Values {
	var v Values
	for i := range specs {
		v[i] = specs[i].Default
	}
	return v
}

// Store holds the live parameter values.
type Store struct {
	slots [Count]atomic.Uint64
}

// New creates a store with every parameter at its default.
func New() *Store {
	s := &Store{}
	s.Reset()
	return s
}

// Value returns the plain value of id. It never blocks or allocates.
func (s *Store) Value(id ID) float64 {
	return math.Float64frombits(s.slots[id].Load())
}

// Bool reports whether a stepped parameter is on.
func (s *Store) Bool(id ID) bool {
	return s.Value(id) > 0.5
}

// Set writes id, clamped to its range. NaN writes are ignored.
func (s *Store) Set(id ID, v float64) {
	if math.IsNaN(v) {
		return
	}
	s.slots[id].Store(math.Float64bits(specs[id].Clamp(v)))
}

// SetBool writes a stepped parameter as 0 or 1.
func (s *Store) SetBool(id ID, on bool) {
	if on {
		s.Set(id, 1)
		return
	}
	s.Set(id, 0)
}

// Normalized returns id mapped to [0, 1].
func (s *Store) Normalized(id ID) float64 {
	return specs[id].Normalize(s.Value(id))
}

// SetNormalized writes id from a [0, 1] value.
func (s *Store) SetNormalized(id ID, normalized float64) {
	if math.IsNaN(normalized) {
		return
	}
	s.Set(id, specs[id].Denormalize(normalized))
}

// Get returns the value of the parameter named key.
func (s *Store) Get(key string) (float64, error) {
	id, ok := Lookup(key)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownParameter, key)
	}
	return s.Value(id), nil
}

// SetByKey writes the parameter named key.
func (s *Store) SetByKey(key string, v float64) error {
	id, ok := Lookup(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParameter, key)
	}
	s.Set(id, v)
	return nil
}

// Snapshot copies every value. Parameters are read one at a time, so a
// concurrent writer may be observed part way.
func (s *Store) Snapshot() Values {
	var v Values
	for i := range s.slots {
		v[i] = s.Value(ID(i))
	}
	return v
}

// Restore writes every value from v.
func (s *Store) Restore(v Values) {
	for i := range v {
		s.Set(ID(i), v[i])
	}
}

// Reset writes every default.
func (s *Store) Reset() {
	s.Restore(Defaults())
}
