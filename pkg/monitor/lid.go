package monitor

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/GEROGIANNIS/GrubPower/pkg/sysfs"
)

// LidState is the observed lid switch position.
type LidState int

const (
	// LidOpen is also the fail-safe default when no lid source is usable:
	// never assume closed without positive evidence.
	LidOpen LidState = iota
	LidClosed
)

func (s LidState) String() string {
	if s == LidClosed {
		return "closed"
	}
	return "open"
}

// acpiLidStates are the preferred state files, in order. Naming varies
// between firmwares.
var acpiLidStates = []string{
	"/proc/acpi/button/lid/LID0/state",
	"/proc/acpi/button/lid/LID/state",
}

// LidReader determines the current lid state. ACPI state files are
// consulted first, then an input switch device probed once at construction.
type LidReader struct {
	fs      *sysfs.FS
	useACPI bool
	evdev   *evdevLid
}

// NewLidReader probes available lid sources. useACPI gates the ACPI button
// state files (HANDLE_ACPI).
func NewLidReader(fs *sysfs.FS, useACPI bool) *LidReader {
	r := &LidReader{fs: fs, useACPI: useACPI}

	r.evdev = probeEvdevLid(fs)
	if r.evdev != nil {
		logrus.Debugf("lid switch input device: %s", r.evdev.path)
	}

	return r
}

// State reads the current lid state, falling through the sources in order
// of preference. With no usable source the lid reports open.
func (r *LidReader) State() LidState {
	if r.useACPI {
		for _, path := range r.acpiCandidates() {
			if state, ok := parseACPILidState(r.fs, path); ok {
				return state
			}
		}
	}

	if r.evdev != nil {
		if state, ok := r.evdev.state(); ok {
			return state
		}
	}

	return LidOpen
}

func (r *LidReader) acpiCandidates() []string {
	candidates := append([]string{}, acpiLidStates...)
	for _, p := range r.fs.Glob("proc/acpi/button/lid/*/state") {
		known := false
		for _, c := range acpiLidStates {
			if c == p {
				known = true
				break
			}
		}
		if !known {
			candidates = append(candidates, p)
		}
	}
	return candidates
}

// parseACPILidState parses content like "state:      open".
func parseACPILidState(fs *sysfs.FS, path string) (LidState, bool) {
	content, err := fs.ReadString(path)
	if err != nil {
		return LidOpen, false
	}

	switch {
	case strings.Contains(content, "closed"):
		return LidClosed, true
	case strings.Contains(content, "open"):
		return LidOpen, true
	default:
		return LidOpen, false
	}
}
