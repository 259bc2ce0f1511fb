package monitor

import (
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/GEROGIANNIS/GrubPower/pkg/config"
	"github.com/GEROGIANNIS/GrubPower/pkg/sysfs"
)

const usbDevicesDir = "/sys/bus/usb/devices"

// USBDevice is a snapshot of one enumerated device's power attributes.
type USBDevice struct {
	Name         string `json:"name"`
	Bus          int    `json:"bus"`
	Control      string `json:"control"`
	Autosuspend  string `json:"autosuspend"`
	Wakeup       string `json:"wakeup"`
	ChargingPort bool   `json:"chargingPort"`
	Matched      bool   `json:"matched"`
}

// USBEnabler forces matched USB devices to stay powered. Devices are
// re-enumerated on every application so hot-plugged devices are picked up;
// nothing is cached across cycles.
type USBEnabler struct {
	fs                 *sysfs.FS
	sel                config.PortSelection
	disableAutosuspend bool
}

// NewUSBEnabler returns an enabler applying the given port selection.
func NewUSBEnabler(fs *sysfs.FS, sel config.PortSelection, disableAutosuspend bool) *USBEnabler {
	return &USBEnabler{
		fs:                 fs,
		sel:                sel,
		disableAutosuspend: disableAutosuspend,
	}
}

// Selection returns the active port selection.
func (e *USBEnabler) Selection() config.PortSelection {
	return e.sel
}

// Apply writes the power-on state to every matched device. Attribute writes
// that fail are skipped silently; writing "on" to an already-on control is a
// no-op at the kernel level. Returns the number of matched devices.
func (e *USBEnabler) Apply() int {
	matched := 0

	for _, name := range e.fs.List(usbDevicesDir) {
		if !isDeviceEntry(name) || !e.match(name) {
			continue
		}
		matched++

		if err := e.fs.WriteString("on", usbDevicesDir, name, "power", "control"); err != nil {
			logrus.Debugf("usb %s: power/control not writable: %v", name, err)
		}
		if err := e.fs.WriteString("enabled", usbDevicesDir, name, "power", "wakeup"); err != nil {
			logrus.Debugf("usb %s: power/wakeup not writable: %v", name, err)
		}

		if e.disableAutosuspend {
			if err := e.fs.WriteString("-1", usbDevicesDir, name, "power", "autosuspend"); err != nil {
				logrus.Debugf("usb %s: power/autosuspend not writable: %v", name, err)
			}
			if err := e.fs.WriteString("-1", usbDevicesDir, name, "power", "autosuspend_delay_ms"); err != nil {
				logrus.Debugf("usb %s: power/autosuspend_delay_ms not writable: %v", name, err)
			}
		}
	}

	return matched
}

// Devices lists the current enumeration with power attribute values. Used by
// the usbtest command and the status API.
func (e *USBEnabler) Devices() []USBDevice {
	var devices []USBDevice

	for _, name := range e.fs.List(usbDevicesDir) {
		if !isDeviceEntry(name) {
			continue
		}

		bus, _ := busNumber(name)
		control, _ := e.fs.ReadString(usbDevicesDir, name, "power", "control")
		autosuspend, _ := e.fs.ReadString(usbDevicesDir, name, "power", "autosuspend_delay_ms")
		wakeup, _ := e.fs.ReadString(usbDevicesDir, name, "power", "wakeup")

		devices = append(devices, USBDevice{
			Name:         name,
			Bus:          bus,
			Control:      control,
			Autosuspend:  autosuspend,
			Wakeup:       wakeup,
			ChargingPort: e.isChargingPort(name),
			Matched:      e.match(name),
		})
	}

	return devices
}

func (e *USBEnabler) match(name string) bool {
	switch e.sel.Mode {
	case config.SelectAll:
		return true
	case config.SelectCharging:
		return e.isChargingPort(name)
	default:
		bus, ok := busNumber(name)
		if !ok {
			return false
		}
		for _, b := range e.sel.Buses {
			if b == bus {
				return true
			}
		}
		return false
	}
}

// isChargingPort checks the hardware low-power-mode attribute. This is an
// approximation: the attribute's presence does not guarantee the port is a
// dedicated charging port.
func (e *USBEnabler) isChargingPort(name string) bool {
	return e.fs.Exists(usbDevicesDir, name, "power", "usb2_hardware_lpm")
}

// isDeviceEntry filters out interface entries like "1-1:1.0"; only root hubs
// ("usb1") and devices ("1-1.4") carry the power attributes we touch.
func isDeviceEntry(name string) bool {
	return !strings.Contains(name, ":")
}

// busNumber extracts the bus number from a device entry name: "usb3" and
// "3-1.2" both belong to bus 3.
func busNumber(name string) (int, bool) {
	if strings.HasPrefix(name, "usb") {
		n, err := strconv.Atoi(name[3:])
		if err != nil {
			return 0, false
		}
		return n, true
	}
	idx := strings.Index(name, "-")
	if idx <= 0 {
		return 0, false
	}
	n, err := strconv.Atoi(name[:idx])
	if err != nil {
		return 0, false
	}
	return n, true
}
