package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/shaunagostinho/drone-telemetry/internal/console"
	"github.com/shaunagostinho/drone-telemetry/internal/logger"
	"github.com/shaunagostinho/drone-telemetry/internal/render"
	"github.com/shaunagostinho/drone-telemetry/internal/telemetry"
	"github.com/shaunagostinho/drone-telemetry/internal/tui"
)

var (
	flagPreset  string
	flagPlain   bool
	flagLogFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dronetui",
		Short: "Terminal dashboard for simulated drone telemetry",
		Long: `dronetui draws fake drone telemetry as ASCII art in the terminal, ten
frames per second, for up to 30 seconds. Press 'q' to quit early.

Use --plain for a simple clear-and-redraw screen instead of the full-screen UI.`,
		SilenceUsage: true,
		RunE:         run,
	}

	rootCmd.Flags().StringVar(&flagPreset, "preset", telemetry.Cruise.Name, "Simulation preset (oscillating, cruise)")
	rootCmd.Flags().BoolVar(&flagPlain, "plain", false, "Redraw a plain text screen instead of the full-screen UI")
	rootCmd.Flags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file (discarded otherwise)")

	err := rootCmd.Execute()
	fmt.Println("\nDrone telemetry simulation ended.")
	if err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// The screen belongs to the renderer; logs go to a file or nowhere
	closer, err := logger.Setup(logger.Config{Path: flagLogFile}, nil)
	if err != nil {
		return err
	}
	defer closer.Close()

	preset, err := telemetry.PresetByName(flagPreset)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := tui.Options{
		Preset:  preset,
		Budget:  render.DefaultBudget,
		Ceiling: tui.DefaultCeiling,
	}
	log.Printf("[main] dronetui starting with preset %q (plain=%v)", preset.Name, flagPlain)

	if !flagPlain {
		return tui.Run(ctx, opts, tea.WithAltScreen())
	}

	keys, err := console.NewQuitPoller(os.Stdin)
	if err != nil {
		return err
	}
	defer keys.Close()
	return tui.RunPlain(ctx, opts, os.Stdout, keys)
}
