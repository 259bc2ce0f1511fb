package monitor

import (
	"testing"
)

func TestReadBatteryPercent(t *testing.T) {
	t.Run("no power supply dir", func(t *testing.T) {
		fs, _ := newFakeFS(t)
		if got := ReadBatteryPercent(fs); got != UnknownBattery {
			t.Errorf("ReadBatteryPercent() = %d, want UnknownBattery", got)
		}
	})

	t.Run("mains only", func(t *testing.T) {
		fs, root := newFakeFS(t)
		writeAttr(t, root, "sys/class/power_supply/AC/type", "Mains\n")
		if got := ReadBatteryPercent(fs); got != UnknownBattery {
			t.Errorf("ReadBatteryPercent() = %d, want UnknownBattery", got)
		}
	})

	t.Run("first battery wins", func(t *testing.T) {
		fs, root := newFakeFS(t)
		writeAttr(t, root, "sys/class/power_supply/AC/type", "Mains\n")
		addBattery(t, root, "BAT0", "73")
		addBattery(t, root, "BAT1", "20")

		if got := ReadBatteryPercent(fs); got != 73 {
			t.Errorf("ReadBatteryPercent() = %d, want 73", got)
		}
	})

	t.Run("unreadable capacity skipped", func(t *testing.T) {
		fs, root := newFakeFS(t)
		writeAttr(t, root, "sys/class/power_supply/BAT0/type", "Battery\n")
		// no capacity attribute on BAT0
		addBattery(t, root, "BAT1", "42")

		if got := ReadBatteryPercent(fs); got != 42 {
			t.Errorf("ReadBatteryPercent() = %d, want 42", got)
		}
	})

	t.Run("out of range capacity ignored", func(t *testing.T) {
		fs, root := newFakeFS(t)
		addBattery(t, root, "BAT0", "250")

		if got := ReadBatteryPercent(fs); got != UnknownBattery {
			t.Errorf("ReadBatteryPercent() = %d, want UnknownBattery", got)
		}
	})
}
