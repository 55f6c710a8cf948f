package tui_test

import (
	"bytes"
	"context"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/shaunagostinho/drone-telemetry/internal/render"
	"github.com/shaunagostinho/drone-telemetry/internal/telemetry"
	"github.com/shaunagostinho/drone-telemetry/internal/tui"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type manualClock struct {
	now time.Time
}

func (c *manualClock) Now() time.Time { return c.now }

func (c *manualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// countingPoller asks to quit once it has been polled more than after times.
type countingPoller struct {
	after int32
	polls atomic.Int32
	raw   bool
}

func (p *countingPoller) QuitRequested() bool { return p.polls.Add(1) > p.after }
func (p *countingPoller) Close() error        { return nil }
func (p *countingPoller) Raw() bool           { return p.raw }

func update(m tui.Model, msg tea.Msg) (tui.Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(tui.Model), cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

var _ = Describe("Model", func() {
	var (
		clk  *manualClock
		opts tui.Options
	)

	BeforeEach(func() {
		clk = &manualClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
		opts = tui.Options{
			Preset:           telemetry.Cruise,
			Budget:           render.DefaultBudget,
			Ceiling:          tui.DefaultCeiling,
			GeneratorOptions: []telemetry.Option{telemetry.WithClock(clk), telemetry.WithSeed(3)},
		}
	})

	It("Should show a placeholder before the first tick", func() {
		m := tui.NewModel(opts)
		Expect(m.Sample()).To(BeNil())
		Expect(m.View()).To(ContainSubstring("Initializing"))
	})

	It("Should take one sample per tick message", func() {
		m := tui.NewModel(opts)
		for i := 1; i <= 3; i++ {
			clk.Advance(100 * time.Millisecond)
			var cmd tea.Cmd
			m, cmd = update(m, tui.TickMsg(clk.now))
			Expect(cmd).ToNot(BeNil())
			Expect(m.Sample()).ToNot(BeNil())
			Expect(m.Sample().Tick).To(Equal(uint64(i)))
		}

		view := m.View()
		Expect(view).To(ContainSubstring("DRONE TELEMETRY"))
		Expect(view).To(ContainSubstring("ALTITUDE"))
		Expect(view).To(ContainSubstring("GPS SAT"))
		Expect(view).To(ContainSubstring("30.0s"))
		Expect(view).To(ContainSubstring("Press 'q' to quit"))
	})

	It("Should render the same view twice for the same sample", func() {
		m := tui.NewModel(opts)
		clk.Advance(100 * time.Millisecond)
		m, _ = update(m, tui.TickMsg(clk.now))
		m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: 40})
		Expect(m.View()).To(Equal(m.View()))
	})

	DescribeTable("Should quit on",
		func(key tea.KeyMsg) {
			m := tui.NewModel(opts)
			_, cmd := update(m, key)
			Expect(isQuit(cmd)).To(BeTrue())
		},
		Entry("q", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}),
		Entry("Q", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'Q'}}),
		Entry("ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}),
	)

	It("Should ignore other keys", func() {
		m := tui.NewModel(opts)
		_, cmd := update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
		Expect(cmd).To(BeNil())
	})

	It("Should quit without another sample once the ceiling is reached", func() {
		m := tui.NewModel(opts)
		clk.Advance(100 * time.Millisecond)
		m, _ = update(m, tui.TickMsg(clk.now))

		clk.Advance(tui.DefaultCeiling)
		m, cmd := update(m, tui.TickMsg(clk.now))
		Expect(isQuit(cmd)).To(BeTrue())
		Expect(m.Expired()).To(BeTrue())
		Expect(m.Sample().Tick).To(Equal(uint64(1)))
	})
})

var _ = Describe("RunPlain", func() {
	opts := func() tui.Options {
		return tui.Options{
			Preset:  telemetry.Oscillating,
			Budget:  render.DefaultBudget,
			Ceiling: tui.DefaultCeiling,
			Period:  5 * time.Millisecond,
		}
	}

	It("Should draw one frame per tick until quit is requested", func() {
		var out bytes.Buffer
		keys := &countingPoller{after: 2}
		Expect(tui.RunPlain(context.Background(), opts(), &out, keys)).To(Succeed())
		Expect(strings.Count(out.String(), "DRONE TELEMETRY")).To(Equal(2))
		Expect(out.String()).ToNot(ContainSubstring("\r\n"))
	})

	It("Should use carriage returns when the terminal is raw", func() {
		var out bytes.Buffer
		keys := &countingPoller{after: 1, raw: true}
		Expect(tui.RunPlain(context.Background(), opts(), &out, keys)).To(Succeed())
		Expect(out.String()).To(ContainSubstring("DRONE TELEMETRY\r\n"))
	})

	It("Should stop at the ceiling", func() {
		o := opts()
		o.Ceiling = 200 * time.Millisecond
		var out bytes.Buffer
		keys := &countingPoller{after: 1 << 30}
		Expect(tui.RunPlain(context.Background(), o, &out, keys)).To(Succeed())
		Expect(out.String()).To(ContainSubstring("/ 0.2s"))
	})

	It("Should return quietly when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		var out bytes.Buffer
		Expect(tui.RunPlain(ctx, opts(), &out, &countingPoller{after: 1 << 30})).To(Succeed())
		Expect(out.Len()).To(BeZero())
	})
})
