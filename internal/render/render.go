// Package render turns telemetry samples into fixed-width character grids.
// Every function here is pure: the same sample and budget always produce the
// same lines.
package render

import (
	"math"
	"strings"
)

// Budget sizes the graphical elements of the terminal display.
type Budget struct {
	CompassSize int // Square compass grid edge, odd values center best
	GraphHeight int // Rows of the altitude graph
}

// DefaultBudget matches the classic 60-column layout.
var DefaultBudget = Budget{CompassSize: 5, GraphHeight: 5}

var compassPoints = []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// CompassPoint names the nearest of the eight compass points for a heading in degrees.
func CompassPoint(heading float64) string {
	h := math.Mod(heading, 360)
	if h < 0 {
		h += 360
	}
	idx := int(math.Round(h/45)) % len(compassPoints)
	return compassPoints[idx]
}

// AltitudeGraph renders history as height rows of '*' columns, one column per
// value. Row i marks the values at or above its level, where levels are spread
// evenly from the maximum (top row) down to the minimum (bottom row). It
// returns nil for fewer than two values.
func AltitudeGraph(history []float64, height int) []string {
	if len(history) < 2 {
		return nil
	}
	if height < 2 {
		height = 2
	}

	minAlt, maxAlt := history[0], history[0]
	for _, v := range history[1:] {
		minAlt = math.Min(minAlt, v)
		maxAlt = math.Max(maxAlt, v)
	}
	if maxAlt == minAlt {
		maxAlt++
	}

	rows := make([]string, height)
	row := make([]byte, len(history))
	for i := 0; i < height; i++ {
		level := maxAlt - (maxAlt-minAlt)*float64(i)/float64(height-1)
		for j, alt := range history {
			if alt >= level {
				row[j] = '*'
			} else {
				row[j] = ' '
			}
		}
		rows[i] = string(row)
	}
	return rows
}

// Compass renders a size×size grid with the cardinal letters on its edges
// and an 'o' marking the heading on a ring one cell inside them.
func Compass(heading float64, size int) []string {
	if size < 3 {
		size = 3
	}
	center := size / 2

	grid := make([][]byte, size)
	for i := range grid {
		grid[i] = []byte(strings.Repeat(" ", size))
	}

	grid[0][center] = 'N'
	grid[center][size-1] = 'E'
	grid[size-1][center] = 'S'
	grid[center][0] = 'W'

	rad := heading * math.Pi / 180
	r := float64(center - 1)
	dx := int(math.Round(math.Sin(rad) * r))
	dy := -int(math.Round(math.Cos(rad) * r))
	grid[center+dy][center+dx] = 'o'

	rows := make([]string, size)
	for i, g := range grid {
		rows[i] = string(g)
	}
	return rows
}
