package monitor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/GEROGIANNIS/GrubPower/pkg/sysfs"
)

func newFakeFS(t *testing.T) (*sysfs.FS, string) {
	t.Helper()
	root := t.TempDir()
	return sysfs.New(root), root
}

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

func readAttr(t *testing.T, root, rel string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(root, rel))
	if err != nil {
		t.Fatalf("read %s: %v", rel, err)
	}
	return string(b)
}

// fakeDisplay records every switch action for assertions.
type fakeDisplay struct {
	actions []string
	fail    bool
}

func (d *fakeDisplay) Name() string { return "fake" }

func (d *fakeDisplay) Off() error {
	d.actions = append(d.actions, "off")
	if d.fail {
		return os.ErrPermission
	}
	return nil
}

func (d *fakeDisplay) On() error {
	d.actions = append(d.actions, "on")
	if d.fail {
		return os.ErrPermission
	}
	return nil
}

func addBattery(t *testing.T, root, name string, capacity string) {
	t.Helper()
	writeAttr(t, root, "sys/class/power_supply/"+name+"/type", "Battery\n")
	writeAttr(t, root, "sys/class/power_supply/"+name+"/capacity", capacity+"\n")
}

func addUSBDevice(t *testing.T, root, name string) {
	t.Helper()
	base := "sys/bus/usb/devices/" + name + "/power/"
	writeAttr(t, root, base+"control", "auto\n")
	writeAttr(t, root, base+"wakeup", "disabled\n")
	writeAttr(t, root, base+"autosuspend", "2\n")
	writeAttr(t, root, base+"autosuspend_delay_ms", "2000\n")
}
