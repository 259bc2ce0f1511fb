// Package monitor implements the runtime loop that keeps USB ports powered,
// watches the battery, and toggles the display with the lid.
package monitor

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/GEROGIANNIS/GrubPower/pkg/sysfs"
)

// Options tunes the monitor loop. Zero durations fall back to defaults,
// except RefreshInterval where zero means "re-assert USB power every cycle".
type Options struct {
	// PollInterval is the sleep between cycles. It bounds lid-to-display
	// latency and CPU wake frequency.
	PollInterval time.Duration
	// RefreshInterval is the USB power re-assert cadence.
	RefreshInterval time.Duration
	// ReportInterval is the battery report cadence. Zero disables reports.
	ReportInterval time.Duration
	// GracePeriod is slept between logging the low-battery condition and
	// issuing the shutdown, to let in-flight writes complete.
	GracePeriod time.Duration

	// MinBattery is the shutdown threshold percentage. Zero disables the
	// shutdown check entirely.
	MinBattery int
	// LidControl enables the lid/display coupling.
	LidControl bool

	// Shutdown is invoked once when the battery threshold is crossed.
	Shutdown func() error
	// Out receives the banner and periodic battery reports.
	Out io.Writer
}

// Status is a point-in-time snapshot served over the control API.
type Status struct {
	Battery         int    `json:"battery"`
	Lid             string `json:"lid"`
	DisplayOn       bool   `json:"displayOn"`
	DisplayDriver   string `json:"displayDriver"`
	PortSelection   string `json:"portSelection"`
	MinBattery      int    `json:"minBattery"`
	MatchedDevices  int    `json:"matchedDevices"`
	ShutdownPending bool   `json:"shutdownPending"`
}

// Monitor runs the poll loop. It is single-threaded: all sysfs reads and
// writes happen synchronously inside Tick. Only the status snapshot is
// shared with other goroutines.
type Monitor struct {
	fs      *sysfs.FS
	usb     *USBEnabler
	lid     *LidReader
	display DisplayController
	opts    Options

	started       time.Time
	prevLid       LidState
	displayOn     bool
	shutdownFired bool
	lastRefresh   time.Time
	lastMatched   int

	mu     sync.Mutex
	status Status
}

// New assembles a monitor. The display mechanism must already be bound
// (ProbeDisplay) so no per-cycle probing happens.
func New(fs *sysfs.FS, usb *USBEnabler, lid *LidReader, display DisplayController, opts Options) *Monitor {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	if opts.GracePeriod < 0 {
		opts.GracePeriod = 0
	}
	if opts.Shutdown == nil {
		opts.Shutdown = func() error {
			logrus.Warn("no shutdown handler bound, staying up")
			return nil
		}
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	return &Monitor{
		fs:      fs,
		usb:     usb,
		lid:     lid,
		display: display,
		opts:    opts,
		// The panel is lit and the lid is open when the loop starts.
		prevLid:   LidOpen,
		displayOn: true,
	}
}

// Run executes the loop until the battery shutdown fires or ctx is
// canceled. The first cycle runs immediately.
func (m *Monitor) Run(ctx context.Context) error {
	m.started = time.Now()
	m.banner()

	if m.Tick(time.Now()) {
		return nil
	}

	ticker := time.NewTicker(m.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if m.Tick(now) {
				return nil
			}
		}
	}
}

// Tick runs one cycle and reports whether the terminal shutdown transition
// was taken. Any single failed read or write is swallowed; the cycle always
// proceeds to the next concern.
func (m *Monitor) Tick(now time.Time) bool {
	if m.shutdownFired {
		return true
	}

	pct := ReadBatteryPercent(m.fs)
	if m.opts.MinBattery > 0 && pct != UnknownBattery && pct <= m.opts.MinBattery {
		m.shutdownLowBattery(pct)
		m.snapshot(pct)
		return true
	}

	if m.opts.LidControl {
		m.applyLid()
	}

	if m.lastRefresh.IsZero() || now.Sub(m.lastRefresh) >= m.opts.RefreshInterval {
		m.lastMatched = m.usb.Apply()
		m.lastRefresh = now
		logrus.Debugf("asserted power on %d usb devices", m.lastMatched)
	}

	m.report(now, pct)
	m.snapshot(pct)
	return false
}

func (m *Monitor) applyLid() {
	lid := m.lid.State()

	if lid != m.prevLid {
		logrus.Infof("lid %s", lid)
		m.setDisplay(lid == LidOpen)
		m.prevLid = lid
		return
	}

	// Self-heal: something re-lit the panel while the lid stayed closed.
	if lid == LidClosed && m.displayOn {
		logrus.Debug("lid closed but display on, forcing off")
		m.setDisplay(false)
	}
}

func (m *Monitor) setDisplay(on bool) {
	var err error
	if on {
		err = m.display.On()
	} else {
		err = m.display.Off()
	}
	if err != nil {
		logrus.Debugf("display %s via %s failed: %v", onOff(on), m.display.Name(), err)
	}
	m.displayOn = on
}

func (m *Monitor) shutdownLowBattery(pct int) {
	logrus.Warnf("battery %d%% at or below threshold %d%%, shutting down", pct, m.opts.MinBattery)
	fmt.Fprintf(m.opts.Out, "battery %d%% <= %d%%, shutting down\n", pct, m.opts.MinBattery)

	m.shutdownFired = true

	if m.opts.GracePeriod > 0 {
		time.Sleep(m.opts.GracePeriod)
	}
	if err := m.opts.Shutdown(); err != nil {
		logrus.Errorf("shutdown failed: %v", err)
	}
}

// banner clears the screen and prints the fixed startup header.
func (m *Monitor) banner() {
	fmt.Fprint(m.opts.Out, "\033[2J\033[H")
	fmt.Fprintln(m.opts.Out, "GrubPower: USB power hold active")
	fmt.Fprintf(m.opts.Out, "  port selection:     %s\n", m.usb.Selection())
	if m.opts.MinBattery > 0 {
		fmt.Fprintf(m.opts.Out, "  shutdown threshold: %d%%\n", m.opts.MinBattery)
	} else {
		fmt.Fprintf(m.opts.Out, "  shutdown threshold: disabled\n")
	}
}

// report prints the battery level on a modulo-of-uptime cadence rather than
// an exact timer.
func (m *Monitor) report(now time.Time, pct int) {
	if m.opts.ReportInterval <= 0 {
		return
	}

	up := int(now.Sub(m.started) / time.Second)
	every := int(m.opts.ReportInterval / time.Second)
	poll := int(m.opts.PollInterval / time.Second)
	if poll < 1 {
		poll = 1
	}

	if up > 0 && every > 0 && up%every < poll {
		if pct == UnknownBattery {
			fmt.Fprintln(m.opts.Out, "battery: unknown")
		} else {
			fmt.Fprintf(m.opts.Out, "battery: %d%%\n", pct)
		}
	}
}

func (m *Monitor) snapshot(pct int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.status = Status{
		Battery:         pct,
		Lid:             m.prevLid.String(),
		DisplayOn:       m.displayOn,
		DisplayDriver:   m.display.Name(),
		PortSelection:   m.usb.Selection().String(),
		MinBattery:      m.opts.MinBattery,
		MatchedDevices:  m.lastMatched,
		ShutdownPending: m.shutdownFired,
	}
}

// Status returns the snapshot taken at the end of the last cycle. Safe to
// call from other goroutines.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// USB exposes the enabler for the device listing endpoints.
func (m *Monitor) USB() *USBEnabler {
	return m.usb
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
