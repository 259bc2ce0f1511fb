package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var _ Config = &File{}

// File is a Config persisted as a plain key=value text file. Comment lines
// and unknown keys are preserved across Save.
type File struct {
	mu       *sync.RWMutex
	filepath string

	values map[string]string
	// lines keeps the original file layout so comments and unknown keys
	// survive a round trip.
	lines []string
}

// NewFile loads (or creates with defaults) a config file at configPath.
func NewFile(configPath string) (*File, error) {
	f := &File{
		filepath: configPath,
		mu:       &sync.RWMutex{},
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		logrus.Warnf("config file %s does not exist, writing defaults", configPath)
		f.values = Defaults()
		f.lines = nil
		if err := f.Save(); err != nil {
			return nil, err
		}
		return f, nil
	}

	if err := f.Load(); err != nil {
		return nil, err
	}
	return f, nil
}

// Load reads and parses the config file. Values for keys absent from the
// file fall back to defaults.
func (f *File) Load() error {
	b, err := os.ReadFile(f.filepath)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read config file %s", f.filepath)
	}

	values := Defaults()
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")

	for i, line := range lines {
		key, value, ok := splitLine(line)
		if !ok {
			continue
		}
		if err := validate(key, value); err != nil {
			if _, known := values[key]; !known {
				// Unknown keys are carried along untouched.
				values[key] = value
				continue
			}
			return fmt.Errorf("%s line %d: %w", f.filepath, i+1, err)
		}
		values[key] = value
	}

	f.mu.Lock()
	f.values = values
	f.lines = lines
	f.mu.Unlock()

	return nil
}

// Save writes the config back to disk, rewriting known key lines in place
// and appending keys not yet present.
func (f *File) Save() error {
	f.mu.RLock()
	out := f.render()
	f.mu.RUnlock()

	if dir := filepath.Dir(f.filepath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return pkgerrors.Wrapf(err, "failed to create config directory")
		}
	}
	return os.WriteFile(f.filepath, []byte(out), 0o644)
}

// Render returns the file content as it would be written by Save.
func (f *File) Render() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.render()
}

func (f *File) render() string {
	seen := map[string]bool{}
	var out []string

	for _, line := range f.lines {
		key, _, ok := splitLine(line)
		if !ok {
			out = append(out, line)
			continue
		}
		if v, exists := f.values[key]; exists {
			out = append(out, key+"="+v)
			seen[key] = true
		} else {
			out = append(out, line)
		}
	}

	if len(out) == 0 {
		out = append(out, "# GrubPower configuration")
	}
	for _, key := range Keys() {
		if !seen[key] {
			out = append(out, key+"="+f.values[key])
		}
	}

	return strings.Join(out, "\n") + "\n"
}

func splitLine(line string) (key, value string, ok bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return "", "", false
	}
	idx := strings.Index(trimmed, "=")
	if idx <= 0 {
		return "", "", false
	}
	key = strings.TrimSpace(trimmed[:idx])
	value = strings.Trim(strings.TrimSpace(trimmed[idx+1:]), `"`)
	return key, value, true
}

// Set assigns a value to a known key after validation.
func (f *File) Set(key, value string) error {
	key = strings.ToUpper(strings.TrimSpace(key))
	if err := validate(key, value); err != nil {
		return err
	}

	f.mu.Lock()
	f.values[key] = value
	f.mu.Unlock()
	return nil
}

// Get returns the raw value of a known key.
func (f *File) Get(key string) (string, error) {
	key = strings.ToUpper(strings.TrimSpace(key))

	f.mu.RLock()
	defer f.mu.RUnlock()

	v, ok := f.values[key]
	if !ok {
		return "", fmt.Errorf("unknown configuration key %q", key)
	}
	return v, nil
}

func (f *File) str(key string) string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if v, ok := f.values[key]; ok {
		return v
	}
	return Defaults()[key]
}

func (f *File) boolean(key string) bool {
	return f.str(key) == "1"
}

func (f *File) KernelPath() string    { return f.str(KeyKernelPath) }
func (f *File) GrubRoot() string      { return f.str(KeyGrubRoot) }
func (f *File) OutputDir() string     { return f.str(KeyOutputDir) }
func (f *File) InitramfsName() string { return f.str(KeyInitramfsName) }
func (f *File) BuildDir() string      { return f.str(KeyBuildDir) }
func (f *File) GrubCustom() string    { return f.str(KeyGrubCustom) }

func (f *File) MinBattery() int {
	n, err := strconv.Atoi(f.str(KeyMinBattery))
	if err != nil {
		return 0
	}
	return n
}

func (f *File) DisableAutosuspend() bool { return f.boolean(KeyDisableAutosuspend) }
func (f *File) EnableLogging() bool      { return f.boolean(KeyEnableLogging) }
func (f *File) LogFile() string          { return f.str(KeyLogFile) }

func (f *File) SelectPorts() PortSelection {
	sel, err := ParsePortSelection(f.str(KeySelectPorts))
	if err != nil {
		// Validated on the way in; fall back to the safe default anyway.
		return PortSelection{Mode: SelectAll}
	}
	return sel
}

func (f *File) LidControl() bool { return f.boolean(KeyLidControl) }
func (f *File) HandleACPI() bool { return f.boolean(KeyHandleACPI) }

func (f *File) ExtraModules() []string {
	return strings.Fields(f.str(KeyExtraModules))
}

func (f *File) ExtraKernelParams() string { return f.str(KeyExtraKernelParams) }

// LogrusFields returns the configuration as structured log fields.
func (f *File) LogrusFields() logrus.Fields {
	f.mu.RLock()
	defer f.mu.RUnlock()

	fields := logrus.Fields{}
	for k, v := range f.values {
		fields[k] = v
	}
	return fields
}
