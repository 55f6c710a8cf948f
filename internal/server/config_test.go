package server_test

import (
	"os"
	"path/filepath"

	"github.com/shaunagostinho/drone-telemetry/internal/server"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func tempDir() string {
	dir, err := os.MkdirTemp("", "dronedash-config")
	Expect(err).ToNot(HaveOccurred())
	DeferCleanup(os.RemoveAll, dir)
	return dir
}

func setenv(key, val string) {
	Expect(os.Setenv(key, val)).To(Succeed())
	DeferCleanup(os.Unsetenv, key)
}

var _ = Describe("Config", func() {
	It("Should fall back to defaults when the file is missing", func() {
		cfg := server.LoadConfig(filepath.Join(tempDir(), "missing.yaml"))
		Expect(cfg.Server.ListenAddr).To(Equal(":8080"))
		Expect(cfg.Simulation.Preset).To(Equal("oscillating"))
		Expect(cfg.Display.Units.Speed).To(Equal("kph"))
		Expect(cfg.Display.Units.Altitude).To(Equal("m"))
		Expect(cfg.NMEA.Enabled).To(BeFalse())
		Expect(cfg.NMEA.BaudRate).To(Equal(4800))
	})

	It("Should read YAML and keep unspecified defaults", func() {
		path := filepath.Join(tempDir(), "config.yaml")
		Expect(os.WriteFile(path, []byte(`
simulation:
  preset: cruise
display:
  units:
    speed: mph
nmea:
  enabled: true
  port_path: /dev/ttyUSB3
`), 0o644)).To(Succeed())

		cfg := server.LoadConfig(path)
		Expect(cfg.Simulation.Preset).To(Equal("cruise"))
		Expect(cfg.Display.Units.Speed).To(Equal("mph"))
		Expect(cfg.Display.Units.Altitude).To(Equal("m"))
		Expect(cfg.NMEA.Enabled).To(BeTrue())
		Expect(cfg.NMEA.PortPath).To(Equal("/dev/ttyUSB3"))
		Expect(cfg.NMEA.BaudRate).To(Equal(4800))
	})

	It("Should apply .env values and let the real environment win", func() {
		dir := tempDir()
		Expect(os.WriteFile(filepath.Join(dir, ".env"), []byte(`
# comment
SIM_PRESET="cruise"
NMEA_BAUD=9600
LISTEN_ADDR=:7000
`), 0o644)).To(Succeed())
		DeferCleanup(os.Unsetenv, "SIM_PRESET")
		DeferCleanup(os.Unsetenv, "NMEA_BAUD")
		setenv("LISTEN_ADDR", ":9999")

		cfg := server.LoadConfig(filepath.Join(dir, "config.yaml"))
		Expect(cfg.Simulation.Preset).To(Equal("cruise"))
		Expect(cfg.NMEA.BaudRate).To(Equal(9600))
		Expect(cfg.Server.ListenAddr).To(Equal(":9999"))
	})

	It("Should reset invalid display and simulation settings", func() {
		setenv("SPEED_UNIT", "furlongs")
		setenv("SIM_PRESET", "loop-de-loop")
		cfg := server.LoadConfig(filepath.Join(tempDir(), "config.yaml"))
		Expect(cfg.Display.Units.Speed).To(Equal("kph"))
		Expect(cfg.Simulation.Preset).To(Equal("oscillating"))
	})

	Describe("UpdateFromJSON", func() {
		var cfg *server.Config

		BeforeEach(func() {
			cfg = server.LoadConfig(filepath.Join(tempDir(), "config.yaml"))
		})

		It("Should merge a partial update without touching other fields", func() {
			Expect(cfg.UpdateFromJSON([]byte(`{"display":{"units":{"altitude":"ft"}}}`))).To(Succeed())
			Expect(cfg.Display.Units.Altitude).To(Equal("ft"))
			Expect(cfg.Display.Units.Speed).To(Equal("kph"))
			Expect(cfg.NMEA.PortPath).To(Equal("/dev/ttyNMEA"))
		})

		It("Should reject an update that leaves the config invalid", func() {
			err := cfg.UpdateFromJSON([]byte(`{"display":{"units":{"speed":"knots","altitude":"ft"}}}`))
			Expect(err).To(HaveOccurred())
			Expect(cfg.Display.Units.Speed).To(Equal("kph"))
			Expect(cfg.Display.Units.Altitude).To(Equal("m"))
		})

		It("Should reject malformed JSON", func() {
			Expect(cfg.UpdateFromJSON([]byte(`{"display":`))).ToNot(Succeed())
		})
	})

	It("Should save and load back the same settings", func() {
		path := filepath.Join(tempDir(), "nested", "config.yaml")
		cfg := server.LoadConfig(path)
		Expect(cfg.UpdateFromJSON([]byte(`{"simulation":{"preset":"cruise"},"nmea":{"baudRate":38400}}`))).To(Succeed())
		Expect(cfg.Save()).To(Succeed())

		again := server.LoadConfig(path)
		Expect(again.Simulation.Preset).To(Equal("cruise"))
		Expect(again.NMEA.BaudRate).To(Equal(38400))
		Expect(again.Path()).To(Equal(path))
	})
})
