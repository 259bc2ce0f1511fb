//go:build !linux

package monitor

import (
	"github.com/GEROGIANNIS/GrubPower/pkg/sysfs"
)

// evdevLid is Linux-only; other platforms never find an input device.
type evdevLid struct {
	path string
}

func probeEvdevLid(_ *sysfs.FS) *evdevLid {
	return nil
}

func (e *evdevLid) state() (LidState, bool) {
	return LidOpen, false
}
