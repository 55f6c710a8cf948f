package nmea

import (
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/shaunagostinho/drone-telemetry/internal/telemetry"
)

// SerialConfig holds configuration for the serial NMEA output.
type SerialConfig struct {
	PortPath string `yaml:"port_path" json:"portPath"`
	BaudRate int    `yaml:"baud_rate" json:"baudRate"`
}

// Writer emits a GGA and an RMC sentence per sample. Write errors are
// logged, not returned; a slow or vanished reader just loses sentences.
type Writer struct {
	mu      sync.Mutex
	name    string
	w       io.Writer
	closer  io.Closer
	failing bool
	written int
}

// NewWriter wraps any io.Writer. name appears in log lines.
func NewWriter(name string, w io.Writer) *Writer {
	nw := &Writer{name: name, w: w}
	if c, ok := w.(io.Closer); ok {
		nw.closer = c
	}
	return nw
}

// OpenSerial opens the configured port for 8N1 output.
func OpenSerial(cfg SerialConfig) (*Writer, error) {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = 4800 // NMEA 0183 standard rate
	}
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(cfg.PortPath, mode)
	if err != nil {
		return nil, fmt.Errorf("nmea: failed to open %s: %w", cfg.PortPath, err)
	}
	log.Printf("[nmea] writing to %s at %d baud", cfg.PortPath, cfg.BaudRate)
	return NewWriter(cfg.PortPath, port), nil
}

// Publish writes the sentences for one sample.
func (n *Writer) Publish(s telemetry.Sample) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if s.Timestamp.IsZero() {
		s.Timestamp = time.Now()
	}
	_, err := io.WriteString(n.w, GGA(s)+"\r\n"+RMC(s)+"\r\n")
	switch {
	case err != nil && !n.failing:
		log.Printf("[nmea] write to %s failed: %v", n.name, err)
		n.failing = true
	case err == nil && n.failing:
		log.Printf("[nmea] write to %s recovered", n.name)
		n.failing = false
	}
	if err == nil {
		n.written++
	}
}

// Written returns the number of samples successfully written.
func (n *Writer) Written() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.written
}

// Close closes the underlying port if it is closable.
func (n *Writer) Close() error {
	if n.closer != nil {
		return n.closer.Close()
	}
	return nil
}

// Port is a serial sink that may not be connected yet. Samples published
// before Connect succeeds are dropped.
type Port struct {
	cfg SerialConfig

	mu sync.Mutex
	w  *Writer
}

// NewPort creates an unconnected port for cfg.
func NewPort(cfg SerialConfig) *Port {
	return &Port{cfg: cfg}
}

// Connect opens the serial port. It is safe to call again after a failure.
func (p *Port) Connect() error {
	w, err := OpenSerial(p.cfg)
	if err != nil {
		return err
	}
	p.mu.Lock()
	old := p.w
	p.w = w
	p.mu.Unlock()
	if old != nil {
		_ = old.Close()
	}
	return nil
}

// Connected reports whether the port has been opened.
func (p *Port) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.w != nil
}

func (p *Port) Publish(s telemetry.Sample) {
	p.mu.Lock()
	w := p.w
	p.mu.Unlock()
	if w != nil {
		w.Publish(s)
	}
}

func (p *Port) Close() error {
	p.mu.Lock()
	w := p.w
	p.w = nil
	p.mu.Unlock()
	if w != nil {
		return w.Close()
	}
	return nil
}
