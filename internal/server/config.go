package server

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/shaunagostinho/drone-telemetry/internal/logger"
	"github.com/shaunagostinho/drone-telemetry/internal/nmea"
	"github.com/shaunagostinho/drone-telemetry/internal/telemetry"
)

// DefaultConfigPath is used by Save when the config was not loaded from a file.
const DefaultConfigPath = "/etc/drone-telemetry/config.yaml"

// Config holds all dashboard configuration.
type Config struct {
	mu sync.RWMutex

	Server     ServerConfig     `yaml:"server" json:"server"`
	Simulation SimulationConfig `yaml:"simulation" json:"simulation"`
	Display    DisplayConfig    `yaml:"display" json:"display"`

	// Optional NMEA sentence output on a serial port
	NMEA NMEAConfig `yaml:"nmea" json:"nmea"`

	Logging logger.Config `yaml:"logging" json:"logging"`

	path string // file path for save/load
}

type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr" json:"listenAddr"`
}

// SimulationConfig selects the preset the generator runs. The preset's
// formulas are fixed; only the name is configurable.
type SimulationConfig struct {
	Preset string `yaml:"preset" json:"preset"`
}

type DisplayConfig struct {
	Units         UnitsConfig `yaml:"units" json:"units"`
	HistoryPoints int         `yaml:"history_points" json:"historyPoints"` // points drawn by the browser chart
}

type UnitsConfig struct {
	Speed    string `yaml:"speed" json:"speed"`       // "kph" or "mph"
	Altitude string `yaml:"altitude" json:"altitude"` // "m" or "ft"
}

type NMEAConfig struct {
	Enabled           bool `yaml:"enabled" json:"enabled"`
	nmea.SerialConfig `yaml:",inline"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr: ":8080",
		},
		Simulation: SimulationConfig{
			Preset: telemetry.Oscillating.Name,
		},
		Display: DisplayConfig{
			Units: UnitsConfig{
				Speed:    "kph",
				Altitude: "m",
			},
			HistoryPoints: telemetry.Oscillating.HistorySize,
		},
		NMEA: NMEAConfig{
			Enabled: false,
			SerialConfig: nmea.SerialConfig{
				PortPath: "/dev/ttyNMEA",
				BaudRate: 4800,
			},
		},
		Logging: logger.Config{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
	}
}

// LoadConfig reads config from a YAML file, then applies .env and environment
// variable overrides. Falls back to defaults if YAML not found.
func LoadConfig(path string) *Config {
	cfg := DefaultConfig()
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[config] no config at %s, using defaults", path)
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		log.Printf("[config] error parsing %s: %v, using defaults", path, err)
		cfg = DefaultConfig()
		cfg.path = path
	} else {
		log.Printf("[config] loaded from %s", path)
	}

	// .env next to the config first, then CWD
	envPaths := []string{
		filepath.Join(filepath.Dir(path), ".env"),
		".env",
	}
	for _, ep := range envPaths {
		loadEnvFile(ep)
	}

	cfg.applyEnvOverrides()
	if err := cfg.validate(); err != nil {
		log.Printf("[config] %v, using default display and simulation settings", err)
		def := DefaultConfig()
		cfg.Simulation = def.Simulation
		cfg.Display = def.Display
	}
	return cfg
}

// loadEnvFile reads a simple KEY=VALUE .env file and sets os env vars.
func loadEnvFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	log.Printf("[config] loading .env from %s", path)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.Trim(strings.TrimSpace(val), `"'`)
		// Real env takes precedence
		if os.Getenv(key) == "" {
			os.Setenv(key, val)
		}
	}
}

// applyEnvOverrides reads environment variables and overrides config values.
// Supported: LISTEN_ADDR, SIM_PRESET, SPEED_UNIT, ALTITUDE_UNIT, NMEA_ENABLED,
// NMEA_PORT, NMEA_BAUD, LOG_FILE
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.Server.ListenAddr = v
	}
	if v := os.Getenv("SIM_PRESET"); v != "" {
		c.Simulation.Preset = v
	}
	if v := os.Getenv("SPEED_UNIT"); v != "" {
		c.Display.Units.Speed = v
	}
	if v := os.Getenv("ALTITUDE_UNIT"); v != "" {
		c.Display.Units.Altitude = v
	}
	if v := os.Getenv("NMEA_ENABLED"); v != "" {
		c.NMEA.Enabled = v == "1" || v == "true" || v == "yes"
	}
	if v := os.Getenv("NMEA_PORT"); v != "" {
		c.NMEA.PortPath = v
	}
	if v := os.Getenv("NMEA_BAUD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.NMEA.BaudRate = n
		}
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		c.Logging.Path = v
	}
}

func (c *Config) validate() error {
	if _, err := telemetry.PresetByName(c.Simulation.Preset); err != nil {
		return err
	}
	switch c.Display.Units.Speed {
	case "kph", "mph":
	default:
		return fmt.Errorf("invalid speed unit %q (want kph or mph)", c.Display.Units.Speed)
	}
	switch c.Display.Units.Altitude {
	case "m", "ft":
	default:
		return fmt.Errorf("invalid altitude unit %q (want m or ft)", c.Display.Units.Altitude)
	}
	if c.Display.HistoryPoints < 0 {
		return fmt.Errorf("invalid history points %d", c.Display.HistoryPoints)
	}
	return nil
}

// Path returns the file the config is saved to.
func (c *Config) Path() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.path == "" {
		return DefaultConfigPath
	}
	return c.path
}

// DisplaySnapshot returns a copy of the display section.
func (c *Config) DisplaySnapshot() DisplayConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Display
}

// Save writes the config to its YAML file.
func (c *Config) Save() error {
	path := c.Path()

	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ToJSON serializes config for the API.
func (c *Config) ToJSON() ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return json.Marshal(c)
}

// UpdateFromJSON applies a partial JSON config update by deep-merging
// incoming fields into the existing config. Fields not present in the
// incoming JSON are preserved. An update that leaves the config invalid is
// rejected as a whole.
func (c *Config) UpdateFromJSON(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	currentBytes, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal current config: %w", err)
	}
	var base map[string]interface{}
	if err := json.Unmarshal(currentBytes, &base); err != nil {
		return fmt.Errorf("unmarshal current config: %w", err)
	}

	var patch map[string]interface{}
	if err := json.Unmarshal(data, &patch); err != nil {
		return fmt.Errorf("unmarshal patch: %w", err)
	}

	deepMerge(base, patch)

	merged, err := json.Marshal(base)
	if err != nil {
		return fmt.Errorf("marshal merged config: %w", err)
	}
	var next Config
	if err := json.Unmarshal(merged, &next); err != nil {
		return fmt.Errorf("unmarshal merged config: %w", err)
	}
	if err := next.validate(); err != nil {
		return err
	}

	c.Server = next.Server
	c.Simulation = next.Simulation
	c.Display = next.Display
	c.NMEA = next.NMEA
	c.Logging = next.Logging
	return nil
}

// deepMerge recursively merges src into dst. For nested maps, values are
// merged rather than replaced. For all other types, src overwrites dst.
func deepMerge(dst, src map[string]interface{}) {
	for key, srcVal := range src {
		if srcMap, ok := srcVal.(map[string]interface{}); ok {
			if dstMap, ok := dst[key].(map[string]interface{}); ok {
				deepMerge(dstMap, srcMap)
				continue
			}
		}
		dst[key] = srcVal
	}
}
