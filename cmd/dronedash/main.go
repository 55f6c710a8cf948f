package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaunagostinho/drone-telemetry/internal/logger"
	"github.com/shaunagostinho/drone-telemetry/internal/nmea"
	"github.com/shaunagostinho/drone-telemetry/internal/server"
	"github.com/shaunagostinho/drone-telemetry/internal/sim"
	"github.com/shaunagostinho/drone-telemetry/internal/telemetry"
	"github.com/shaunagostinho/drone-telemetry/web"
)

var (
	flagConfig string
	flagListen string
	flagPreset string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dronedash",
		Short: "Browser dashboard for simulated drone telemetry",
		Long: `dronedash serves a web dashboard and streams fake drone telemetry to it
over a WebSocket, ten samples per second, while at least one browser is
connected. Samples can also be written to a serial port as NMEA sentences.`,
		SilenceUsage: true,
		RunE:         run,
	}

	rootCmd.Flags().StringVar(&flagConfig, "config", "/etc/drone-telemetry/config.yaml", "Path to config file")
	rootCmd.Flags().StringVar(&flagListen, "listen", "", "Override listen address (e.g. :8080)")
	rootCmd.Flags().StringVar(&flagPreset, "preset", "", "Override simulation preset (oscillating, cruise)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("[main] dronedash starting")

	cfg := server.LoadConfig(flagConfig)
	if flagListen != "" {
		cfg.Server.ListenAddr = flagListen
	}
	if flagPreset != "" {
		cfg.Simulation.Preset = flagPreset
	}

	closer, err := logger.Setup(cfg.Logging, os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	preset, err := telemetry.PresetByName(cfg.Simulation.Preset)
	if err != nil {
		return err
	}
	log.Printf("[main] simulating preset %q", preset.Name)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var sinks []sim.Sink
	if cfg.NMEA.Enabled {
		port := nmea.NewPort(cfg.NMEA.SerialConfig)
		defer port.Close()
		// Non-blocking; the dashboard starts regardless
		go connectWithRetry(ctx, "nmea", port, 10)
		sinks = append(sinks, port)
	}

	srv, err := server.New(cfg, telemetry.NewGenerator(preset), web.FS, sinks...)
	if err != nil {
		return err
	}
	if err := srv.Run(ctx); err != nil {
		log.Printf("[main] server exited: %v", err)
		return err
	}
	log.Println("[main] shut down cleanly")
	return nil
}

type connectable interface {
	Connect() error
	Close() error
}

// connectWithRetry attempts to connect with exponential backoff.
// Starts at 1s, doubles each attempt up to 60s, retries up to maxAttempts
// then continues at max interval indefinitely.
func connectWithRetry(ctx context.Context, name string, c connectable, maxAttempts int) {
	delay := 1 * time.Second
	maxDelay := 60 * time.Second
	attempt := 0

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		err := c.Connect()
		if err == nil {
			log.Printf("[%s] connected (attempt %d)", name, attempt+1)
			return
		}

		attempt++
		if attempt <= maxAttempts {
			log.Printf("[%s] connect attempt %d/%d failed: %v (retry in %v)",
				name, attempt, maxAttempts, err, delay)
		} else {
			log.Printf("[%s] connect attempt %d failed: %v (retry in %v)",
				name, attempt, err, delay)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}

		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}
}
