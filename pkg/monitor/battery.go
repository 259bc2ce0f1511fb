package monitor

import (
	"github.com/GEROGIANNIS/GrubPower/pkg/sysfs"
)

const powerSupplyDir = "/sys/class/power_supply"

// UnknownBattery is reported when no battery capacity is readable. The
// shutdown check treats it as "no reading", never as zero.
const UnknownBattery = -1

// ReadBatteryPercent returns the capacity of the first power-supply device
// of type Battery, or UnknownBattery if none is discoverable.
func ReadBatteryPercent(fs *sysfs.FS) int {
	for _, name := range fs.List(powerSupplyDir) {
		typ, err := fs.ReadString(powerSupplyDir, name, "type")
		if err != nil || typ != "Battery" {
			continue
		}

		pct, err := fs.ReadInt(powerSupplyDir, name, "capacity")
		if err != nil || pct < 0 || pct > 100 {
			continue
		}
		return pct
	}
	return UnknownBattery
}
