// Package nmea encodes telemetry samples as NMEA 0183 sentences so that
// ground-station software expecting a serial GPS can follow the simulated drone.
package nmea

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shaunagostinho/drone-telemetry/internal/telemetry"
)

const (
	kmhPerKnot = 1.852
	fixQuality = 1   // GPS fix
	hdop       = 0.8 // Reported horizontal dilution
)

// GGA builds a $GPGGA fix sentence (position, satellites, altitude).
func GGA(s telemetry.Sample) string {
	lat, ns := formatCoord(s.Latitude, true)
	lon, ew := formatCoord(s.Longitude, false)
	body := fmt.Sprintf("GPGGA,%s,%s,%s,%s,%s,%d,%02d,%.1f,%.1f,M,0.0,M,,",
		utcTime(s), lat, ns, lon, ew, fixQuality, s.Satellites, hdop, s.Altitude)
	return wrap(body)
}

// RMC builds a $GPRMC sentence (position, ground speed in knots, course, date).
func RMC(s telemetry.Sample) string {
	lat, ns := formatCoord(s.Latitude, true)
	lon, ew := formatCoord(s.Longitude, false)
	body := fmt.Sprintf("GPRMC,%s,A,%s,%s,%s,%s,%.1f,%.1f,%s,,,A",
		utcTime(s), lat, ns, lon, ew, s.Speed/kmhPerKnot, s.Heading,
		s.Timestamp.UTC().Format("020106"))
	return wrap(body)
}

// Checksum XORs every byte of a sentence body (the text between $ and *).
func Checksum(body string) byte {
	var calc byte
	for i := 0; i < len(body); i++ {
		calc ^= body[i]
	}
	return calc
}

// Valid checks the XOR checksum after '*'.
func Valid(line string) bool {
	if !strings.HasPrefix(line, "$") {
		return false
	}
	idx := strings.Index(line, "*")
	if idx < 0 || idx+3 > len(line) {
		return false
	}
	expected, err := strconv.ParseUint(line[idx+1:idx+3], 16, 8)
	if err != nil {
		return false
	}
	return byte(expected) == Checksum(line[1:idx])
}

// Split strips the leading '$' and checksum suffix and splits on commas.
func Split(line string) []string {
	if idx := strings.Index(line, "*"); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimPrefix(line, "$")
	return strings.Split(line, ",")
}

// ParseCoord converts NMEA ddmm.mmmm format to decimal degrees.
func ParseCoord(raw, dir string) float64 {
	if raw == "" || dir == "" {
		return 0
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	deg := math.Floor(val / 100)
	result := deg + (val-deg*100)/60
	if dir == "S" || dir == "W" {
		result = -result
	}
	return result
}

// formatCoord converts decimal degrees to ddmm.mmmm (latitude) or
// dddmm.mmmm (longitude) plus the hemisphere letter.
func formatCoord(v float64, lat bool) (string, string) {
	dir := "N"
	if !lat {
		dir = "E"
	}
	if v < 0 {
		v = -v
		if lat {
			dir = "S"
		} else {
			dir = "W"
		}
	}

	deg := math.Floor(v)
	mins := math.Round((v-deg)*60*10000) / 10000
	if mins >= 60 {
		deg++
		mins = 0
	}

	if lat {
		return fmt.Sprintf("%02.0f%07.4f", deg, mins), dir
	}
	return fmt.Sprintf("%03.0f%07.4f", deg, mins), dir
}

func utcTime(s telemetry.Sample) string {
	t := s.Timestamp.UTC()
	return fmt.Sprintf("%s.%02d", t.Format("150405"), t.Nanosecond()/10_000_000)
}

func wrap(body string) string {
	return fmt.Sprintf("$%s*%02X", body, Checksum(body))
}
