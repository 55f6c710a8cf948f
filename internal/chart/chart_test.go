package chart_test

import (
	"bytes"
	"image/color"
	"image/png"

	"github.com/shaunagostinho/drone-telemetry/internal/chart"
	"github.com/shaunagostinho/drone-telemetry/internal/telemetry"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var lineColor = color.RGBA{0x00, 0xff, 0x41, 0xff}

var _ = Describe("Renderer", func() {
	var r *chart.Renderer

	BeforeEach(func() {
		var err error
		r, err = chart.NewRenderer(320, 160)
		Expect(err).ToNot(HaveOccurred())
	})

	It("Should reject sizes smaller than the margins", func() {
		_, err := chart.NewRenderer(40, 20)
		Expect(err).To(HaveOccurred())
	})

	It("Should draw the history from the left edge of the plot to the right", func() {
		s := telemetry.Sample{Altitude: 150, Heading: 90, AltitudeHistory: []float64{100, 150}}
		img, err := r.Render(s)
		Expect(err).ToNot(HaveOccurred())
		Expect(img.Bounds().Dx()).To(Equal(320))
		Expect(img.Bounds().Dy()).To(Equal(160))

		// Lowest value at the bottom-left of the plot, highest at the top-right.
		Expect(img.RGBAAt(64, 160-14-1)).To(Equal(lineColor))
		Expect(img.RGBAAt(320-12-1, 26)).To(Equal(lineColor))
	})

	It("Should produce identical images for identical samples", func() {
		s := telemetry.Sample{Altitude: 431, AltitudeHistory: []float64{430, 431, 432, 431}}
		a, err := r.Render(s)
		Expect(err).ToNot(HaveOccurred())
		b, err := r.Render(s)
		Expect(err).ToNot(HaveOccurred())
		Expect(a.Pix).To(Equal(b.Pix))
	})

	It("Should handle empty and single-value histories", func() {
		_, err := r.Render(telemetry.Sample{})
		Expect(err).ToNot(HaveOccurred())
		_, err = r.Render(telemetry.Sample{AltitudeHistory: []float64{42}})
		Expect(err).ToNot(HaveOccurred())
	})

	It("Should encode a decodable PNG", func() {
		var buf bytes.Buffer
		Expect(r.WritePNG(&buf, telemetry.Sample{AltitudeHistory: []float64{1, 3, 2}})).To(Succeed())
		img, err := png.Decode(&buf)
		Expect(err).ToNot(HaveOccurred())
		Expect(img.Bounds().Dx()).To(Equal(320))
	})
})
