package telemetry

import "time"

// Sample is the snapshot produced by one generator tick.
// It owns its AltitudeHistory slice; consumers may read it freely.
type Sample struct {
	Timestamp time.Time `json:"timestamp"` // Wall clock at capture
	Time      string    `json:"time"`      // Timestamp as HH:MM:SS.mmm
	Elapsed   float64   `json:"elapsed"`   // Seconds since generator start
	Tick      uint64    `json:"tick"`      // 1-based tick counter

	Altitude      float64 `json:"altitude"`   // Meters
	Speed         float64 `json:"speed"`      // km/h
	VerticalSpeed float64 `json:"vspeed"`     // m/s
	Acceleration  float64 `json:"accel"`      // m/s²
	Heading       float64 `json:"heading"`    // Degrees, [0,360)
	Latitude      float64 `json:"latitude"`   // Decimal degrees
	Longitude     float64 `json:"longitude"`  // Decimal degrees
	Satellites    int     `json:"satellites"` // GPS sats in view
	Battery       float64 `json:"battery"`    // Percent

	AltitudeHistory []float64 `json:"altitudeHistory"` // Oldest first
}

// ElapsedDuration returns Elapsed as a time.Duration.
func (s Sample) ElapsedDuration() time.Duration {
	return time.Duration(s.Elapsed * float64(time.Second))
}
