package monitor

import (
	"os/exec"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/GEROGIANNIS/GrubPower/pkg/sysfs"
)

const backlightClassDir = "/sys/class/backlight"

// DisplayController powers the panel off and on. The mechanism is probed
// once at startup and bound for the session rather than re-probed per cycle.
type DisplayController interface {
	Name() string
	Off() error
	On() error
}

// ProbeDisplay picks the first available mechanism: a DPMS tool, a terminal
// blanking tool, then direct backlight manipulation. With none available a
// no-op controller is returned and lid control degrades to logging only.
func ProbeDisplay(fs *sysfs.FS) DisplayController {
	if path, err := exec.LookPath("vbetool"); err == nil {
		return &execDisplay{
			name: "vbetool",
			off:  [][]string{{path, "dpms", "off"}},
			on:   [][]string{{path, "dpms", "on"}},
		}
	}

	if path, err := exec.LookPath("setterm"); err == nil {
		return &execDisplay{
			name: "setterm",
			off:  [][]string{{path, "--blank", "force"}},
			on:   [][]string{{path, "--blank", "poke"}},
		}
	}

	if bl, ok := NewBacklightDisplay(fs); ok {
		return bl
	}

	logrus.Warn("no display control mechanism available")
	return &nullDisplay{}
}

// execDisplay shells out to an external helper tool.
type execDisplay struct {
	name string
	off  [][]string
	on   [][]string
}

func (d *execDisplay) Name() string { return d.name }

func (d *execDisplay) Off() error { return d.runAll(d.off) }
func (d *execDisplay) On() error  { return d.runAll(d.on) }

func (d *execDisplay) runAll(cmds [][]string) error {
	for _, argv := range cmds {
		if err := exec.Command(argv[0], argv[1:]...).Run(); err != nil {
			return err
		}
	}
	return nil
}

// backlightDisplay zeroes the panel brightness directly. The brightness in
// effect before the first Off is saved so On can restore it.
type backlightDisplay struct {
	fs    *sysfs.FS
	name  string
	saved int
}

// NewBacklightDisplay binds the first backlight device, if any.
func NewBacklightDisplay(fs *sysfs.FS) (DisplayController, bool) {
	names := fs.List(backlightClassDir)
	if len(names) == 0 {
		return nil, false
	}
	return &backlightDisplay{fs: fs, name: names[0]}, true
}

func (d *backlightDisplay) Name() string { return "backlight" }

func (d *backlightDisplay) Off() error {
	if v, err := d.fs.ReadInt(backlightClassDir, d.name, "brightness"); err == nil && v > 0 {
		d.saved = v
	}
	return d.fs.WriteString("0", backlightClassDir, d.name, "brightness")
}

func (d *backlightDisplay) On() error {
	v := d.saved
	if v <= 0 {
		// No saved value, come back at half of maximum.
		max, err := d.fs.ReadInt(backlightClassDir, d.name, "max_brightness")
		if err != nil || max <= 0 {
			max = 100
		}
		v = max / 2
		if v < 1 {
			v = 1
		}
	}
	return d.fs.WriteString(strconv.Itoa(v), backlightClassDir, d.name, "brightness")
}

// nullDisplay is bound when no mechanism exists.
type nullDisplay struct{}

func (d *nullDisplay) Name() string { return "none" }
func (d *nullDisplay) Off() error   { return nil }
func (d *nullDisplay) On() error    { return nil }
