package render

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shaunagostinho/drone-telemetry/internal/telemetry"
)

const (
	screenWidth   = 60
	labelWidth    = 15
	graphIndent   = 10
	compassIndent = 20
	minAxisWidth  = 20
)

// Dashboard lays out a full text screen for one sample. ceiling is the
// session length shown in the footer; zero omits it.
func Dashboard(s telemetry.Sample, b Budget, ceiling time.Duration) []string {
	var lines []string
	add := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	add("%s%s", strings.Repeat(" ", (screenWidth-len("DRONE TELEMETRY"))/2), "DRONE TELEMETRY")
	add("%s", strings.Repeat("-", screenWidth))

	add("%-*s%6.1f m", labelWidth, "ALTITUDE", s.Altitude)
	indent := strings.Repeat(" ", graphIndent)
	add("%s^", indent)
	axis := minAxisWidth
	if len(s.AltitudeHistory) > axis {
		axis = len(s.AltitudeHistory)
	}
	graph := AltitudeGraph(s.AltitudeHistory, b.GraphHeight)
	for i := 0; i < max(b.GraphHeight, 2); i++ {
		row := ""
		if i < len(graph) {
			row = graph[i]
		}
		add("%s|%-*s", indent, axis, row)
	}
	add("%s|%s Time", indent, strings.Repeat("-", axis))
	add("")

	add("%-*s%6.1f km/h", labelWidth, "SPEED", s.Speed)
	add("%-*s%6.1f m/s", labelWidth, "VSI", s.VerticalSpeed)
	add("%-*s%6.1f m/s²", labelWidth, "ACCEL", s.Acceleration)
	add("%-*s%5.0f°  %s", labelWidth, "HEADING", math.Floor(s.Heading), CompassPoint(s.Heading))
	add("")

	pad := strings.Repeat(" ", compassIndent)
	for _, row := range Compass(s.Heading, b.CompassSize) {
		add("%s%s", pad, row)
	}
	add("")

	lat, latHemi := hemisphere(s.Latitude, "N", "S")
	lon, lonHemi := hemisphere(s.Longitude, "E", "W")
	add("%-*s%.6f° %s", labelWidth, "GPS:", lat, latHemi)
	add("%-*s%.6f° %s", labelWidth, "", lon, lonHemi)
	add("")

	add("%-*s%3.0f%%", labelWidth, "BATTERY:", s.Battery)
	add("%-*s%d", labelWidth, "GPS SAT:", s.Satellites)
	add("")

	if ceiling > 0 {
		add("%-*s%5.1fs / %.1fs", labelWidth, "TIME:", s.Elapsed, ceiling.Seconds())
	} else {
		add("%-*s%5.1fs", labelWidth, "TIME:", s.Elapsed)
	}
	add("")
	add("Press 'q' to quit")
	return lines
}

// Screen joins Dashboard lines with newlines.
func Screen(s telemetry.Sample, b Budget, ceiling time.Duration) string {
	return strings.Join(Dashboard(s, b, ceiling), "\n")
}

func hemisphere(v float64, pos, neg string) (float64, string) {
	if v < 0 {
		return -v, neg
	}
	return v, pos
}
