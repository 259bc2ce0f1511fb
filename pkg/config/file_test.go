package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewFileWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grubpower.conf")

	cfg, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file was not created: %v", err)
	}

	if got := cfg.MinBattery(); got != 5 {
		t.Errorf("MinBattery() = %d, want default 5", got)
	}
	if got := cfg.SelectPorts().Mode; got != SelectAll {
		t.Errorf("SelectPorts().Mode = %v, want SelectAll", got)
	}
	if !cfg.LidControl() {
		t.Error("LidControl() = false, want default true")
	}
	if cfg.EnableLogging() {
		t.Error("EnableLogging() = true, want default false")
	}
}

func TestFileLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grubpower.conf")
	content := strings.Join([]string{
		"# my config",
		"MIN_BATTERY=25",
		`SELECT_PORTS="1,2"`,
		"LID_CONTROL=0",
		"EXTRA_MODULES=/lib/a.ko /lib/b.ko",
		"SOME_FUTURE_KEY=kept",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}

	if got := cfg.MinBattery(); got != 25 {
		t.Errorf("MinBattery() = %d, want 25", got)
	}
	sel := cfg.SelectPorts()
	if sel.Mode != SelectExplicit || len(sel.Buses) != 2 {
		t.Errorf("SelectPorts() = %+v, want explicit buses 1,2", sel)
	}
	if cfg.LidControl() {
		t.Error("LidControl() = true, want false")
	}
	if mods := cfg.ExtraModules(); len(mods) != 2 || mods[0] != "/lib/a.ko" {
		t.Errorf("ExtraModules() = %v", mods)
	}
	// Keys absent from the file fall back to defaults.
	if got := cfg.OutputDir(); got != "/boot" {
		t.Errorf("OutputDir() = %q, want default /boot", got)
	}
}

func TestFileSavePreservesLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grubpower.conf")
	content := "# leading comment\nMIN_BATTERY=25\nSOME_FUTURE_KEY=kept\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}
	if err := cfg.Set("MIN_BATTERY", "30"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	saved := string(b)

	if !strings.HasPrefix(saved, "# leading comment\n") {
		t.Errorf("comment was not preserved:\n%s", saved)
	}
	if !strings.Contains(saved, "MIN_BATTERY=30") {
		t.Errorf("updated value missing:\n%s", saved)
	}
	if !strings.Contains(saved, "SOME_FUTURE_KEY=kept") {
		t.Errorf("unknown key was dropped:\n%s", saved)
	}
	// Known keys missing from the original file get appended.
	if !strings.Contains(saved, "SELECT_PORTS=all") {
		t.Errorf("default key was not appended:\n%s", saved)
	}
}

func TestFileSetRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grubpower.conf")
	cfg, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile() error = %v", err)
	}

	if err := cfg.Set("MIN_BATTERY", "banana"); err == nil {
		t.Error("Set(MIN_BATTERY, banana) expected error")
	}
	if err := cfg.Set("UNKNOWN", "1"); err == nil {
		t.Error("Set(UNKNOWN) expected error")
	}
	if err := cfg.Set("min_battery", "42"); err != nil {
		t.Errorf("Set with lowercase key should normalize, got %v", err)
	}
	if got := cfg.MinBattery(); got != 42 {
		t.Errorf("MinBattery() = %d, want 42", got)
	}
}

func TestFileLoadRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grubpower.conf")
	if err := os.WriteFile(path, []byte("MIN_BATTERY=nope\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFile(path); err == nil {
		t.Error("NewFile() with invalid MIN_BATTERY expected error")
	}
}
