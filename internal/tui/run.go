package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/shaunagostinho/drone-telemetry/internal/console"
	"github.com/shaunagostinho/drone-telemetry/internal/render"
	"github.com/shaunagostinho/drone-telemetry/internal/sim"
	"github.com/shaunagostinho/drone-telemetry/internal/telemetry"
)

// clearScreen homes the cursor and wipes the terminal.
const clearScreen = "\x1b[H\x1b[2J"

// Run starts the Bubble Tea dashboard and blocks until the user quits, the
// ceiling is reached or ctx is cancelled.
func Run(ctx context.Context, opts Options, progOpts ...tea.ProgramOption) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tui: render loop panicked: %v", r)
		}
	}()

	progOpts = append([]tea.ProgramOption{tea.WithContext(ctx)}, progOpts...)
	p := tea.NewProgram(NewModel(opts), progOpts...)

	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("tui: %w", err)
	}
	if m, ok := final.(Model); ok && m.Expired() {
		log.Printf("[tui] session ceiling of %s reached", opts.Ceiling)
	}
	return nil
}

// RunPlain redraws the text dashboard on out once per tick until keys reports
// a quit, the ceiling is reached or ctx is cancelled. Ticks and renders run
// strictly in sequence on the calling goroutine.
func RunPlain(ctx context.Context, opts Options, out io.Writer, keys console.QuitPoller) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tui: render loop panicked: %v", r)
		}
	}()

	gen := telemetry.NewGenerator(opts.Preset, opts.GeneratorOptions...)
	newline := "\n"
	if keys.Raw() {
		newline = "\r\n"
	}

	var writeErr error
	sink := sim.SinkFunc(func(s telemetry.Sample) {
		screen := strings.ReplaceAll(render.Screen(s, opts.Budget, opts.Ceiling), "\n", newline)
		if _, werr := io.WriteString(out, clearScreen+screen+newline); werr != nil && writeErr == nil {
			writeErr = werr
		}
	})

	expired := func() bool {
		return opts.Ceiling > 0 && gen.Elapsed() >= opts.Ceiling
	}
	loop := sim.New(gen, sink).WithPeriod(opts.period())
	stop := sim.Any(keys.QuitRequested, expired, func() bool { return writeErr != nil })

	if err := loop.Run(ctx, stop); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if writeErr != nil {
		return fmt.Errorf("tui: writing frame: %w", writeErr)
	}
	if expired() {
		log.Printf("[tui] session ceiling of %s reached after %d ticks", opts.Ceiling, loop.Ticks())
	}
	return nil
}
