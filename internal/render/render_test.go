package render_test

import (
	"strings"
	"time"

	"github.com/shaunagostinho/drone-telemetry/internal/render"
	"github.com/shaunagostinho/drone-telemetry/internal/telemetry"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AltitudeGraph", func() {
	It("Should mark only the maxima in the top row", func() {
		history := []float64{0, 10, 5, 10, 2}
		graph := render.AltitudeGraph(history, 5)

		Expect(graph).To(Equal([]string{
			" * * ",
			" * * ",
			" *** ",
			" *** ",
			"*****",
		}))
		for j, v := range history {
			if v >= 10 {
				Expect(graph[0][j]).To(Equal(byte('*')))
			} else {
				Expect(graph[0][j]).To(Equal(byte(' ')))
			}
		}
	})

	It("Should produce one column per value", func() {
		history := make([]float64, 20)
		for i := range history {
			history[i] = float64(i)
		}
		for _, row := range render.AltitudeGraph(history, 7) {
			Expect(row).To(HaveLen(20))
		}
	})

	It("Should fill only the bottom row for a flat history", func() {
		graph := render.AltitudeGraph([]float64{431, 431, 431}, 3)
		Expect(graph).To(Equal([]string{"   ", "   ", "***"}))
	})

	It("Should return nil for fewer than two values", func() {
		Expect(render.AltitudeGraph(nil, 5)).To(BeNil())
		Expect(render.AltitudeGraph([]float64{1}, 5)).To(BeNil())
	})

	It("Should raise a height below two", func() {
		Expect(render.AltitudeGraph([]float64{1, 2}, 1)).To(Equal([]string{" *", "**"}))
	})
})

var _ = Describe("Compass", func() {
	DescribeTable("Should place the heading marker one ring inside the letters",
		func(heading float64, want []string) {
			Expect(render.Compass(heading, 5)).To(Equal(want))
		},
		Entry("north", 0.0, []string{"  N  ", "  o  ", "W   E", "     ", "  S  "}),
		Entry("east", 90.0, []string{"  N  ", "     ", "W  oE", "     ", "  S  "}),
		Entry("south", 180.0, []string{"  N  ", "     ", "W   E", "  o  ", "  S  "}),
		Entry("west", 270.0, []string{"  N  ", "     ", "Wo  E", "     ", "  S  "}),
	)

	It("Should produce a square grid", func() {
		rows := render.Compass(123, 9)
		Expect(rows).To(HaveLen(9))
		for _, r := range rows {
			Expect(r).To(HaveLen(9))
		}
	})

	DescribeTable("CompassPoint",
		func(heading float64, want string) {
			Expect(render.CompassPoint(heading)).To(Equal(want))
		},
		Entry("north", 0.0, "N"),
		Entry("just below north", 359.0, "N"),
		Entry("north east", 40.0, "NE"),
		Entry("south west", 225.0, "SW"),
		Entry("negative", -90.0, "W"),
	)
})

var _ = Describe("Dashboard", func() {
	sample := telemetry.Sample{
		Elapsed:         12.34,
		Altitude:        431.2,
		Speed:           160.7,
		VerticalSpeed:   -3.1,
		Heading:         91,
		Latitude:        -35.363261,
		Longitude:       149.165230,
		Satellites:      10,
		Battery:         100,
		AltitudeHistory: []float64{430.5, 431.2, 431.9, 430.1},
	}

	It("Should render identically for the same sample", func() {
		a := render.Screen(sample, render.DefaultBudget, 30*time.Second)
		b := render.Screen(sample, render.DefaultBudget, 30*time.Second)
		Expect(a).To(Equal(b))
	})

	It("Should show the values and session clock", func() {
		screen := render.Screen(sample, render.DefaultBudget, 30*time.Second)
		Expect(screen).To(ContainSubstring("DRONE TELEMETRY"))
		Expect(screen).To(ContainSubstring("ALTITUDE        431.2 m"))
		Expect(screen).To(ContainSubstring(" 160.7 km/h"))
		Expect(screen).To(ContainSubstring("35.363261° S"))
		Expect(screen).To(ContainSubstring("149.165230° E"))
		Expect(screen).To(ContainSubstring("100%"))
		Expect(screen).To(ContainSubstring(" 12.3s / 30.0s"))
		Expect(screen).To(ContainSubstring("E"))
		Expect(screen).To(ContainSubstring("Press 'q' to quit"))
	})

	It("Should keep a fixed graph area while history is short", func() {
		short := sample
		short.AltitudeHistory = []float64{431}
		lines := render.Dashboard(short, render.DefaultBudget, 0)
		full := render.Dashboard(sample, render.DefaultBudget, 0)
		Expect(lines).To(HaveLen(len(full)))
		Expect(strings.Join(lines, "\n")).NotTo(ContainSubstring("/ "))
	})
})
