package telemetry

import (
	"math"
	"math/rand"
	"time"
)

// Clock abstracts the time source. The real clock reads time.Now, whose
// monotonic reading makes elapsed time immune to wall-clock jumps.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Option configures a Generator.
type Option func(*Generator)

// WithClock replaces the time source.
func WithClock(c Clock) Option {
	return func(g *Generator) { g.clock = c }
}

// WithSeed makes the random draws reproducible.
func WithSeed(seed int64) Option {
	return func(g *Generator) { g.rnd = rand.New(rand.NewSource(seed)) }
}

// WithHeading sets the initial heading in degrees.
func WithHeading(deg float64) Option {
	return func(g *Generator) { g.heading = WrapHeading(deg) }
}

// Generator synthesizes one telemetry sample per Tick. It is not safe for
// concurrent use; a single tick loop owns it and hands out Sample copies.
type Generator struct {
	preset Preset
	clock  Clock
	rnd    *rand.Rand
	start  time.Time

	ticks       uint64
	lastElapsed float64
	altitude    float64
	heading     float64
	history     *History
}

// NewGenerator creates a generator for the given preset and captures the
// start time from its clock.
func NewGenerator(p Preset, opts ...Option) *Generator {
	g := &Generator{
		preset: p,
		clock:  realClock{},
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.start = g.clock.Now()
	g.history = NewHistory(p.HistorySize)
	return g
}

// Preset returns the formulas the generator was built with.
func (g *Generator) Preset() Preset { return g.preset }

// Elapsed returns the time since the generator was created.
func (g *Generator) Elapsed() time.Duration {
	return g.clock.Now().Sub(g.start)
}

// Tick advances the simulation to the current elapsed time and returns a
// snapshot. Random draws are taken in a fixed order (altitude, speed,
// acceleration, latitude, longitude, battery, heading, satellites) so a seeded
// generator replays identically.
func (g *Generator) Tick() Sample {
	now := g.clock.Now()
	t := now.Sub(g.start).Seconds()
	if t < g.lastElapsed {
		t = g.lastElapsed
	}
	g.lastElapsed = t
	g.ticks++

	p := g.preset
	prevAlt := g.altitude
	g.altitude = p.Altitude.At(t, g.rnd)

	vspeed := 0.0
	if g.ticks > 1 {
		vspeed = p.VSIScale * (g.altitude - prevAlt)
	}

	speed := p.Speed.At(t, g.rnd)
	accel := p.Acceleration.At(t, g.rnd)
	lat := p.Latitude.At(t, g.rnd)
	lon := p.Longitude.At(t, g.rnd)

	battery := p.Battery.At(t, g.rnd) - p.BatteryDrain*t
	battery = math.Max(0, math.Min(100, battery))

	delta := p.HeadingStep
	if p.HeadingJitter > 0 {
		delta += uniform(g.rnd, p.HeadingJitter)
	}
	g.heading = WrapHeading(g.heading + delta)

	sats := p.SatellitesMin
	if p.SatellitesMax > p.SatellitesMin {
		sats += g.rnd.Intn(p.SatellitesMax - p.SatellitesMin + 1)
	}

	g.history.Push(g.altitude)

	return Sample{
		Timestamp:       now,
		Time:            now.Format("15:04:05.000"),
		Elapsed:         t,
		Tick:            g.ticks,
		Altitude:        g.altitude,
		Speed:           speed,
		VerticalSpeed:   vspeed,
		Acceleration:    accel,
		Heading:         g.heading,
		Latitude:        lat,
		Longitude:       lon,
		Satellites:      sats,
		Battery:         battery,
		AltitudeHistory: g.history.Values(),
	}
}

// WrapHeading folds any angle in degrees into [0,360).
func WrapHeading(deg float64) float64 {
	h := math.Mod(deg, 360)
	if h < 0 {
		h += 360
	}
	// -1e-15 + 360 rounds to 360 in float64.
	if h >= 360 {
		h = 0
	}
	return h
}
