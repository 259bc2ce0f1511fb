// Package config manages the GrubPower configuration file.
package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Config is the read surface used by the installer and the monitor loop.
// The monitor reads its values once at startup and never re-reads them.
type Config interface {
	KernelPath() string
	GrubRoot() string
	OutputDir() string
	InitramfsName() string
	BuildDir() string
	GrubCustom() string
	MinBattery() int
	DisableAutosuspend() bool
	EnableLogging() bool
	LogFile() string
	SelectPorts() PortSelection
	LidControl() bool
	HandleACPI() bool
	ExtraModules() []string
	ExtraKernelParams() string

	// Set assigns a raw value to a known key, validating it first.
	Set(key, value string) error
	// Get returns the raw value for a known key.
	Get(key string) (string, error)

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error
}

// Known configuration keys.
const (
	KeyKernelPath         = "KERNEL_PATH"
	KeyGrubRoot           = "GRUB_ROOT"
	KeyOutputDir          = "OUTPUT_DIR"
	KeyInitramfsName      = "INITRAMFS_NAME"
	KeyBuildDir           = "BUILD_DIR"
	KeyGrubCustom         = "GRUB_CUSTOM"
	KeyMinBattery         = "MIN_BATTERY"
	KeyDisableAutosuspend = "DISABLE_AUTOSUSPEND"
	KeyEnableLogging      = "ENABLE_LOGGING"
	KeyLogFile            = "LOG_FILE"
	KeySelectPorts        = "SELECT_PORTS"
	KeyLidControl         = "LID_CONTROL"
	KeyHandleACPI         = "HANDLE_ACPI"
	KeyExtraModules       = "EXTRA_MODULES"
	KeyExtraKernelParams  = "EXTRA_KERNEL_PARAMS"
)

// Defaults returns the default value for every known key.
func Defaults() map[string]string {
	return map[string]string{
		KeyKernelPath:         "auto",
		KeyGrubRoot:           "auto",
		KeyOutputDir:          "/boot",
		KeyInitramfsName:      "grubpower-initramfs.img",
		KeyBuildDir:           "/var/lib/grubpower/build",
		KeyGrubCustom:         "/etc/grub.d/40_grubpower",
		KeyMinBattery:         "5",
		KeyDisableAutosuspend: "1",
		KeyEnableLogging:      "0",
		KeyLogFile:            "/grubpower.log",
		KeySelectPorts:        "all",
		KeyLidControl:         "1",
		KeyHandleACPI:         "1",
		KeyExtraModules:       "",
		KeyExtraKernelParams:  "quiet",
	}
}

// Keys returns the known keys in stable order.
func Keys() []string {
	d := Defaults()
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PortSelectionMode is the USB port selection policy.
type PortSelectionMode int

const (
	// SelectAll powers every enumerable USB device.
	SelectAll PortSelectionMode = iota
	// SelectCharging powers only devices matched by the charging-port
	// heuristic. The heuristic is a best-effort approximation.
	SelectCharging
	// SelectExplicit powers only devices on the listed bus numbers.
	SelectExplicit
)

// PortSelection is the parsed SELECT_PORTS value.
type PortSelection struct {
	Mode  PortSelectionMode
	Buses []int
}

func (p PortSelection) String() string {
	switch p.Mode {
	case SelectAll:
		return "all"
	case SelectCharging:
		return "charging"
	default:
		parts := make([]string, len(p.Buses))
		for i, b := range p.Buses {
			parts[i] = strconv.Itoa(b)
		}
		return strings.Join(parts, ",")
	}
}

// ParsePortSelection parses a SELECT_PORTS value: "all", "charging", or a
// comma-separated list of bus numbers.
func ParsePortSelection(s string) (PortSelection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return PortSelection{Mode: SelectAll}, nil
	case "charging":
		return PortSelection{Mode: SelectCharging}, nil
	}

	var buses []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return PortSelection{}, fmt.Errorf("invalid port number %q in SELECT_PORTS", part)
		}
		buses = append(buses, n)
	}
	if len(buses) == 0 {
		return PortSelection{}, fmt.Errorf("SELECT_PORTS %q selects no ports", s)
	}
	sort.Ints(buses)

	return PortSelection{Mode: SelectExplicit, Buses: buses}, nil
}

func validate(key, value string) error {
	switch key {
	case KeyMinBattery:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 || n > 100 {
			return fmt.Errorf("%s must be an integer between 0 and 100, got %q", key, value)
		}
	case KeyDisableAutosuspend, KeyEnableLogging, KeyLidControl, KeyHandleACPI:
		if value != "0" && value != "1" {
			return fmt.Errorf("%s must be 0 or 1, got %q", key, value)
		}
	case KeySelectPorts:
		if _, err := ParsePortSelection(value); err != nil {
			return err
		}
	case KeyKernelPath, KeyGrubRoot, KeyOutputDir, KeyInitramfsName, KeyBuildDir,
		KeyGrubCustom, KeyLogFile, KeyExtraModules, KeyExtraKernelParams:
		// free-form
	default:
		return fmt.Errorf("unknown configuration key %q", key)
	}
	return nil
}
