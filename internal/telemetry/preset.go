package telemetry

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
)

// ErrUnknownPreset is returned by PresetByName for names not in Presets.
var ErrUnknownPreset = errors.New("telemetry: unknown preset")

// Wave is one synthesized channel: a baseline, a sine term over elapsed
// seconds and an optional uniform jitter.
type Wave struct {
	Base      float64
	Amplitude float64
	Frequency float64 // Radians per second
	Phase     float64 // Radians; math.Pi/2 turns the sine into a cosine
	Jitter    float64 // Half-width of the uniform noise band
}

// At evaluates the wave at t seconds. rnd is consulted only when Jitter > 0.
func (w Wave) At(t float64, rnd *rand.Rand) float64 {
	v := w.Base
	if w.Amplitude != 0 {
		v += w.Amplitude * math.Sin(t*w.Frequency+w.Phase)
	}
	if w.Jitter > 0 {
		v += uniform(rnd, w.Jitter)
	}
	return v
}

// Preset is a complete set of formulas for one flight profile.
type Preset struct {
	Name string

	Altitude     Wave
	Speed        Wave
	Acceleration Wave
	Latitude     Wave
	Longitude    Wave
	Battery      Wave

	// BatteryDrain is subtracted per elapsed second; the result is clamped to [0,100].
	BatteryDrain float64

	// Heading advances by HeadingStep ± HeadingJitter every tick.
	HeadingStep   float64
	HeadingJitter float64

	SatellitesMin int
	SatellitesMax int

	// VSIScale multiplies the altitude delta between consecutive ticks.
	VSIScale float64

	// HistorySize is the rolling altitude history capacity.
	HistorySize int
}

// Oscillating climbs and descends around 100 m while circling a point near
// New York. Used by the web dashboard.
var Oscillating = Preset{
	Name:          "oscillating",
	Altitude:      Wave{Base: 100, Amplitude: 50, Frequency: 0.5},
	Speed:         Wave{Base: 50, Amplitude: 20, Frequency: 0.3},
	Acceleration:  Wave{Base: 1, Amplitude: 0.5, Frequency: 0.2},
	Latitude:      Wave{Base: 40.7128, Amplitude: 0.1, Frequency: 0.1},
	Longitude:     Wave{Base: -74.0060, Amplitude: 0.1, Frequency: 0.1, Phase: math.Pi / 2},
	Battery:       Wave{Base: 100},
	BatteryDrain:  0.05,
	HeadingStep:   0.5,
	SatellitesMin: 8,
	SatellitesMax: 12,
	VSIScale:      10,
	HistorySize:   50,
}

// Cruise holds a near-constant altitude and speed over Canberra with a
// wandering heading. Used by the terminal viewer.
var Cruise = Preset{
	Name:          "cruise",
	Altitude:      Wave{Base: 431, Jitter: 1},
	Speed:         Wave{Base: 161, Jitter: 1},
	Latitude:      Wave{Base: -35.363261},
	Longitude:     Wave{Base: 149.165230},
	Battery:       Wave{Base: 100},
	HeadingJitter: 5,
	SatellitesMin: 10,
	SatellitesMax: 10,
	VSIScale:      10,
	HistorySize:   20,
}

// Presets lists the built-in presets by name.
var Presets = map[string]Preset{
	Oscillating.Name: Oscillating,
	Cruise.Name:      Cruise,
}

// PresetByName looks up a built-in preset, ignoring case and surrounding space.
func PresetByName(name string) (Preset, error) {
	p, ok := Presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Preset{}, fmt.Errorf("%w %q (available: %s)", ErrUnknownPreset, name, strings.Join(PresetNames(), ", "))
	}
	return p, nil
}

// PresetNames returns the built-in preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// uniform draws from [-halfWidth, +halfWidth).
func uniform(rnd *rand.Rand, halfWidth float64) float64 {
	return (rnd.Float64()*2 - 1) * halfWidth
}
