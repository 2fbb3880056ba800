package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DefaultWatchdogCeiling is how long a loader may stay busy before the
// watchdog force-clears it.
const DefaultWatchdogCeiling = 10 * time.Second

// DefaultWatchdogInterval is the watchdog check period.
const DefaultWatchdogInterval = 2 * time.Second

// LoaderWatchdog owns the single busy indicator. The loader is visible
// iff a pending operation exists; a background check force-clears the
// indicator when an operation exceeds the ceiling so the UI is never
// permanently blocked. Begin/End are reentrant-safe: End without a
// matching Begin is a no-op, and nested Begins collapse to one
// indicator.
type LoaderWatchdog struct {
	spinner   spinner.Model
	depth     int
	startedAt time.Time
	warned    bool
	ceiling   time.Duration
	interval  time.Duration
	now       func() time.Time
}

// NewLoaderWatchdog creates a watchdog with the given check interval and
// ceiling. Non-positive values fall back to the defaults.
func NewLoaderWatchdog(interval, ceiling time.Duration) *LoaderWatchdog {
	if interval <= 0 {
		interval = DefaultWatchdogInterval
	}
	if ceiling <= 0 {
		ceiling = DefaultWatchdogCeiling
	}
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	return &LoaderWatchdog{
		spinner:  s,
		ceiling:  ceiling,
		interval: interval,
		now:      time.Now,
	}
}

// Begin shows the busy indicator and records the start timestamp.
// Nested Begins are deduplicated: one indicator, one timestamp.
func (w *LoaderWatchdog) Begin() {
	w.depth++
	if w.depth == 1 {
		w.startedAt = w.now()
		w.warned = false
	}
}

// End clears the indicator once every Begin is matched. Calling End
// without a matching Begin is a no-op.
func (w *LoaderWatchdog) End() {
	if w.depth == 0 {
		return
	}
	w.depth--
	if w.depth == 0 {
		w.startedAt = time.Time{}
		w.warned = false
	}
}

// ForceClear hides the indicator regardless of depth. Used by the
// watchdog and by workflow resets so stale pending state never leaks
// into a new session.
func (w *LoaderWatchdog) ForceClear() {
	w.depth = 0
	w.startedAt = time.Time{}
	w.warned = false
}

// Active reports whether the busy indicator is visible.
func (w *LoaderWatchdog) Active() bool {
	return w.depth > 0
}

// Check compares elapsed time against the ceiling. When exceeded it
// force-clears the indicator and returns true exactly once per stuck
// operation; subsequent checks return false.
func (w *LoaderWatchdog) Check() bool {
	if w.depth == 0 || w.warned {
		return false
	}
	if w.now().Sub(w.startedAt) < w.ceiling {
		return false
	}
	w.warned = true
	w.depth = 0
	w.startedAt = time.Time{}
	return true
}

// Interval returns the watchdog check period.
func (w *LoaderWatchdog) Interval() time.Duration {
	return w.interval
}

// Indicator renders the spinner when active, empty otherwise.
func (w *LoaderWatchdog) Indicator() string {
	if w.depth == 0 {
		return ""
	}
	return w.spinner.View()
}

// TickCmd starts the spinner animation.
func (w *LoaderWatchdog) TickCmd() tea.Cmd {
	return w.spinner.Tick
}

// UpdateSpinner advances the spinner animation and returns the command
// for the next frame.
func (w *LoaderWatchdog) UpdateSpinner(msg spinner.TickMsg) tea.Cmd {
	var cmd tea.Cmd
	w.spinner, cmd = w.spinner.Update(msg)
	return cmd
}
