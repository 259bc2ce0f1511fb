package sysfs

import (
	"os"
	"path/filepath"
	"testing"
)

func writeAttr(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestReadString(t *testing.T) {
	root := t.TempDir()
	writeAttr(t, root, "sys/class/power_supply/BAT0/type", "Battery\n")

	fs := New(root)
	got, err := fs.ReadString("/sys/class/power_supply", "BAT0", "type")
	if err != nil {
		t.Fatalf("ReadString() error = %v", err)
	}
	if got != "Battery" {
		t.Errorf("ReadString() = %q, want %q (trimmed)", got, "Battery")
	}
}

func TestReadInt(t *testing.T) {
	root := t.TempDir()
	writeAttr(t, root, "sys/class/power_supply/BAT0/capacity", " 87\n")
	writeAttr(t, root, "sys/class/power_supply/BAT0/status", "Discharging\n")

	fs := New(root)

	if got, err := fs.ReadInt("/sys/class/power_supply/BAT0/capacity"); err != nil || got != 87 {
		t.Errorf("ReadInt() = %d, %v; want 87, nil", got, err)
	}
	if _, err := fs.ReadInt("/sys/class/power_supply/BAT0/status"); err == nil {
		t.Error("ReadInt() on non-numeric content expected error")
	}
	if _, err := fs.ReadInt("/sys/missing"); err == nil {
		t.Error("ReadInt() on missing file expected error")
	}
}

func TestWriteAndExists(t *testing.T) {
	root := t.TempDir()
	writeAttr(t, root, "sys/bus/usb/devices/1-1/power/control", "auto\n")

	fs := New(root)
	if err := fs.WriteString("on", "/sys/bus/usb/devices/1-1/power/control"); err != nil {
		t.Fatalf("WriteString() error = %v", err)
	}

	got, err := fs.ReadString("/sys/bus/usb/devices/1-1/power/control")
	if err != nil || got != "on" {
		t.Errorf("read back = %q, %v; want on", got, err)
	}
	if !fs.Exists("/sys/bus/usb/devices/1-1") {
		t.Error("Exists() = false for present dir")
	}
	if fs.Exists("/sys/bus/usb/devices/9-9") {
		t.Error("Exists() = true for absent dir")
	}
}

func TestListAndGlob(t *testing.T) {
	root := t.TempDir()
	writeAttr(t, root, "sys/bus/usb/devices/usb2/power/control", "auto")
	writeAttr(t, root, "sys/bus/usb/devices/1-1/power/control", "auto")
	writeAttr(t, root, "proc/acpi/button/lid/LID0/state", "state: open")

	fs := New(root)

	names := fs.List("/sys/bus/usb/devices")
	if len(names) != 2 || names[0] != "1-1" || names[1] != "usb2" {
		t.Errorf("List() = %v, want sorted [1-1 usb2]", names)
	}
	if got := fs.List("/sys/missing"); got != nil {
		t.Errorf("List() on missing dir = %v, want nil", got)
	}

	globbed := fs.Glob("proc/acpi/button/lid/*/state")
	if len(globbed) != 1 || globbed[0] != "/proc/acpi/button/lid/LID0/state" {
		t.Errorf("Glob() = %v", globbed)
	}
}
