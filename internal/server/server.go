package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/shaunagostinho/drone-telemetry/internal/chart"
	"github.com/shaunagostinho/drone-telemetry/internal/sim"
	"github.com/shaunagostinho/drone-telemetry/internal/telemetry"
)

const (
	chartWidth  = 640
	chartHeight = 240

	sendQueue = 64
)

// Server runs the simulation while at least one viewer is connected and
// broadcasts every sample to WebSocket clients.
type Server struct {
	cfg   *Config
	webFS fs.FS
	loop  *sim.Loop
	chart *chart.Renderer

	clients   map[*wsClient]struct{}
	clientsMu sync.RWMutex

	upgrader websocket.Upgrader

	runMu   sync.Mutex
	baseCtx context.Context
	running <-chan struct{} // closed when the active loop run has ended

	latest atomic.Pointer[telemetry.Sample]
	preset string
}

type wsClient struct {
	id        string
	conn      *websocket.Conn
	send      chan []byte
	connected time.Time
	frames    atomic.Uint64
}

// Frame is the JSON structure sent to all WebSocket clients.
type Frame struct {
	Telemetry *telemetry.Sample `json:"telemetry,omitempty"`
	Config    *DisplayConfig    `json:"config,omitempty"`
	Preset    string            `json:"preset,omitempty"`
	Stamp     int64             `json:"stamp"` // Unix ms
}

// New creates a server that ticks source and publishes each sample to its
// WebSocket clients, then to any extra sinks.
func New(cfg *Config, source sim.Source, webFS fs.FS, extra ...sim.Sink) (*Server, error) {
	renderer, err := chart.NewRenderer(chartWidth, chartHeight)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	s := &Server{
		cfg:     cfg,
		webFS:   webFS,
		chart:   renderer,
		clients: make(map[*wsClient]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		baseCtx: context.Background(),
	}
	if named, ok := source.(interface{ Preset() telemetry.Preset }); ok {
		s.preset = named.Preset().Name
	}
	sinks := append(sim.Fanout{s}, extra...)
	s.loop = sim.New(source, sinks)
	return s, nil
}

// Handler returns the HTTP routes: static files, /ws and the JSON/PNG API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	if s.webFS != nil {
		mux.Handle("/", http.FileServer(http.FS(s.webFS)))
	}
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/telemetry", s.handleTelemetry)
	mux.HandleFunc("/api/altitude.png", s.handleAltitudeChart)
	return mux
}

// Run serves HTTP until ctx is cancelled. Loop runs started by viewers are
// bound to ctx.
func (s *Server) Run(ctx context.Context) error {
	s.runMu.Lock()
	s.baseCtx = ctx
	s.runMu.Unlock()

	srv := &http.Server{
		Addr:              s.cfg.Server.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("[server] listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.closeClients()
		return srv.Shutdown(shutCtx)
	})
	return g.Wait()
}

// Viewers returns the number of connected WebSocket clients.
func (s *Server) Viewers() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// Simulating reports whether the tick loop is running.
func (s *Server) Simulating() bool { return s.loop.Active() }

// Latest returns the last published sample, or nil before the first tick.
func (s *Server) Latest() *telemetry.Sample { return s.latest.Load() }

// Publish implements sim.Sink.
func (s *Server) Publish(sample telemetry.Sample) {
	s.latest.Store(&sample)
	s.broadcast(Frame{Telemetry: &sample, Stamp: time.Now().UnixMilli()})
}

// ensureLoop starts the tick loop unless a run is still in progress. A run
// that is winding down restarts itself once it has exited if viewers remain.
func (s *Server) ensureLoop() {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if s.running != nil || s.baseCtx.Err() != nil {
		return
	}
	done, ok := s.loop.Start(s.baseCtx, func() bool { return s.Viewers() == 0 })
	if !ok {
		return
	}
	s.running = done
	log.Printf("[sim] loop started")

	go func() {
		<-done
		s.runMu.Lock()
		s.running = nil
		s.runMu.Unlock()
		log.Printf("[sim] loop stopped (%s samples so far)", humanize.Comma(int64(s.loop.Ticks())))

		if s.Viewers() > 0 {
			s.ensureLoop()
		}
	}()
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade error: %v", err)
		return
	}

	client := &wsClient{
		id:        uuid.NewString(),
		conn:      conn,
		send:      make(chan []byte, sendQueue),
		connected: time.Now(),
	}

	// Config goes first so the page knows its units before any telemetry
	display := s.cfg.DisplaySnapshot()
	cfgFrame := Frame{
		Config: &display,
		Preset: s.preset,
		Stamp:  time.Now().UnixMilli(),
	}
	if data, err := json.Marshal(cfgFrame); err == nil {
		client.send <- data
	}

	s.clientsMu.Lock()
	s.clients[client] = struct{}{}
	n := len(s.clients)
	s.clientsMu.Unlock()

	log.Printf("[ws] client %s connected (%d total)", client.id, n)
	s.ensureLoop()

	// Writer goroutine
	go func() {
		defer conn.Close()
		for msg := range client.send {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				break
			}
			client.frames.Add(1)
		}
	}()

	// Reader goroutine; incoming messages are ignored
	go func() {
		defer func() {
			s.clientsMu.Lock()
			delete(s.clients, client)
			n := len(s.clients)
			close(client.send)
			s.clientsMu.Unlock()
			log.Printf("[ws] client %s disconnected (connected %s, %s frames, %d total)",
				client.id, humanize.Time(client.connected),
				humanize.Comma(int64(client.frames.Load())), n)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		data, err := s.cfg.ToJSON()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)

	case http.MethodPost:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if err := s.cfg.UpdateFromJSON(body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.cfg.Save(); err != nil {
			log.Printf("[config] save failed: %v", err)
		}
		display := s.cfg.DisplaySnapshot()
		s.broadcast(Frame{Config: &display, Preset: s.preset, Stamp: time.Now().UnixMilli()})

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sample := s.latest.Load()
	if sample == nil {
		http.Error(w, "no telemetry yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sample)
}

func (s *Server) handleAltitudeChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var sample telemetry.Sample
	if latest := s.latest.Load(); latest != nil {
		sample = *latest
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.chart.WritePNG(w, sample); err != nil {
		log.Printf("[chart] render failed: %v", err)
	}
}

func (s *Server) broadcast(frame Frame) {
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}

	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for client := range s.clients {
		select {
		case client.send <- data:
		default:
			// Client too slow, skip
		}
	}
}

func (s *Server) closeClients() {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for client := range s.clients {
		client.conn.Close()
	}
}
